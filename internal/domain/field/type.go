package field

import (
	"strings"

	"github.com/kailas-cloud/dataextract/internal/domain"
)

// Type is the value type of a field.
type Type string

// Supported types. Declaration order is the default priority order.
const (
	String   Type = "string"
	Integer  Type = "int"
	Float    Type = "float"
	DateTime Type = "datetime"
)

var allTypes = []Type{String, Integer, Float, DateTime}

// Types returns all supported types in priority order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	for _, a := range allTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Rank returns the position of t in the supported type order, or -1.
func (t Type) Rank() int {
	for i, a := range allTypes {
		if a == t {
			return i
		}
	}
	return -1
}

// ParseType validates s as a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", domain.NewValidationError(domain.ErrInvalidType, s, "available types are "+typeList())
	}
	return t, nil
}

// ParseTypes validates every entry of ss, keeping order.
func ParseTypes(ss []string) ([]Type, error) {
	out := make([]Type, 0, len(ss))
	for _, s := range ss {
		t, err := ParseType(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func typeList() string {
	names := make([]string, len(allTypes))
	for i, t := range allTypes {
		names[i] = `"` + string(t) + `"`
	}
	return strings.Join(names, ", ")
}
