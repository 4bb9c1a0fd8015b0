// Package element parses declarative field metadata attached to a class.
//
// An element names one or more fields, the getter producing their value and
// the value type (string by default). In Go source an element is declared as
// a struct tag on a blank marker field:
//
//	type Customer struct {
//		_ struct{} `dataextract:"fields=name,customer.name;getter=Name"`
//		_ struct{} `dataextract:"fields=customer.since;getter=Since;type=datetime"`
//	}
package element

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// Tag is the struct tag key read by ParseTag callers.
const Tag = "dataextract"

// Metadata keys.
const (
	KeyType   = "type"
	KeyFields = "fields"
	KeyGetter = "getter"
)

var fieldsRe = regexp.MustCompile(`^([a-z_]+)(\.([a-z_]+))?(\s*,\s*([a-z_]+)(\.([a-z_]+))?)*$`)

// Element is one validated metadata entry.
type Element struct {
	fieldType field.Type
	fields    []string
	getter    string
}

// New validates and creates an element.
func New(ft field.Type, fields []string, getter string) (Element, error) {
	if len(fields) == 0 {
		return Element{}, domain.NewValidationError(domain.ErrMissingKey, KeyFields, "")
	}
	if getter == "" {
		return Element{}, domain.NewValidationError(domain.ErrMissingKey, KeyGetter, "")
	}
	if ft == "" {
		ft = field.String
	}
	if _, err := field.ParseType(string(ft)); err != nil {
		return Element{}, err
	}
	for _, f := range fields {
		if err := field.ValidateName(f); err != nil {
			return Element{}, err
		}
	}
	if err := field.ValidateGetter(getter); err != nil {
		return Element{}, err
	}
	cp := make([]string, len(fields))
	copy(cp, fields)
	return Element{fieldType: ft, fields: cp, getter: getter}, nil
}

// Parse builds an element from raw key/value metadata.
func Parse(values map[string]string) (Element, error) {
	for _, k := range []string{KeyFields, KeyGetter} {
		if strings.TrimSpace(values[k]) == "" {
			return Element{}, domain.NewValidationError(domain.ErrMissingKey, k, "")
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case KeyType, KeyFields, KeyGetter:
		default:
			return Element{}, domain.NewValidationError(domain.ErrUnknownKey, k, "")
		}
	}

	raw := strings.TrimSpace(values[KeyFields])
	if !fieldsRe.MatchString(raw) {
		return Element{}, domain.NewValidationError(domain.ErrInvalidField, raw,
			"fields must be a comma separated list of lowercase names with at most one dot each")
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		fields = append(fields, strings.TrimSpace(f))
	}

	ft := field.String
	if t, ok := values[KeyType]; ok {
		ft = field.Type(strings.TrimSpace(t))
	}

	return New(ft, fields, strings.TrimSpace(values[KeyGetter]))
}

// ParseTag parses a struct tag value. Elements are separated by '|', pairs by ';'.
func ParseTag(tag string) ([]Element, error) {
	var out []Element
	for _, chunk := range strings.Split(tag, "|") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		values := make(map[string]string)
		for _, pair := range strings.Split(chunk, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, domain.NewValidationError(domain.ErrUnknownKey, pair, "expected key=value")
			}
			values[strings.TrimSpace(k)] = v
		}
		el, err := Parse(values)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// Type returns the value type of the listed fields.
func (e Element) Type() field.Type { return e.fieldType }

// Fields returns the field names in declaration order.
func (e Element) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Getter returns the getter name.
func (e Element) Getter() string { return e.getter }
