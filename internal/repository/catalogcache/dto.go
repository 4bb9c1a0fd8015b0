package catalogcache

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// schemaVersion is bumped whenever the persisted layout changes.
const schemaVersion = 1

const (
	kindProvided = "provided"
	kindDeclared = "declared"
)

// catalogDoc is the persisted catalog layout.
type catalogDoc struct {
	Version int        `json:"version"`
	Fields  []fieldRow `json:"fields"`
}

// fieldRow is the JSON-serializable representation of one catalog record.
type fieldRow struct {
	Kind   string `json:"kind"`
	Field  string `json:"field"`
	Type   string `json:"type"`
	Class  string `json:"class,omitempty"`
	Getter string `json:"getter,omitempty"`
}

// encodeCatalog serializes fields, keeping their order.
func encodeCatalog(fields []field.Field) ([]byte, error) {
	doc := catalogDoc{Version: schemaVersion, Fields: make([]fieldRow, len(fields))}
	for i, f := range fields {
		row := fieldRow{Kind: kindProvided, Field: f.Name(), Type: string(f.Type())}
		if f.Declared() {
			row.Kind = kindDeclared
			row.Class = f.Class()
			row.Getter = f.Getter()
		}
		doc.Fields[i] = row
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return data, nil
}

// decodeCatalog hydrates fields, re-validating every record.
func decodeCatalog(data []byte) ([]field.Field, error) {
	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w: %w", domain.ErrCacheCorrupt, err)
	}
	if doc.Version != schemaVersion {
		return nil, fmt.Errorf("catalog schema version %d, want %d: %w",
			doc.Version, schemaVersion, domain.ErrCacheCorrupt)
	}

	fields := make([]field.Field, 0, len(doc.Fields))
	for i, row := range doc.Fields {
		var (
			f   field.Field
			err error
		)
		switch row.Kind {
		case kindProvided:
			f, err = field.New(row.Field, field.Type(row.Type))
		case kindDeclared:
			f, err = field.NewDeclared(row.Field, field.Type(row.Type), row.Class, row.Getter)
		default:
			err = fmt.Errorf("unknown record kind %q", row.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w: %w", i, domain.ErrCacheCorrupt, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}
