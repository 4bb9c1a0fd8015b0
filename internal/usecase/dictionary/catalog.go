package dictionary

import "github.com/kailas-cloud/dataextract/internal/domain/field"

// Catalog is the field catalog split by caching contract.
type Catalog struct {
	// Persisted holds declared fields followed by cacheable provider fields.
	Persisted []field.Field
	// Ephemeral holds non-cacheable provider fields, recomputed on every build.
	Ephemeral []field.Field
}

// All returns both partitions, persisted first.
func (c Catalog) All() []field.Field {
	out := make([]field.Field, 0, len(c.Persisted)+len(c.Ephemeral))
	out = append(out, c.Persisted...)
	return append(out, c.Ephemeral...)
}

// Declared returns the records sourced from class metadata.
func (c Catalog) Declared() []field.Field {
	return declaredOnly(c.Persisted)
}

func declaredOnly(fields []field.Field) []field.Field {
	out := make([]field.Field, 0, len(fields))
	for _, f := range fields {
		if f.Declared() {
			out = append(out, f)
		}
	}
	return out
}
