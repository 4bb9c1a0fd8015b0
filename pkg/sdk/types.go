package dataextract

import (
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// FieldType is the value type of a field.
type FieldType = field.Type

// Field types, in default priority order.
const (
	String   = field.String
	Integer  = field.Integer
	Float    = field.Float
	DateTime = field.DateTime
)

// ParseFieldType validates a type name such as "datetime".
func ParseFieldType(s string) (FieldType, error) {
	return field.ParseType(s)
}

// Field describes a field a provider can emit.
type Field struct {
	Name string
	Type FieldType
}

// FieldInfo is one catalog record.
type FieldInfo struct {
	Name string
	Type FieldType

	// Class and Getter are empty for provider fields.
	Class  string
	Getter string

	// Ephemeral fields come from non-cacheable providers.
	Ephemeral bool
}

// Value is one typed value produced by a Provider.
type Value struct {
	Field string
	Type  FieldType
	Value any
}

// Expression computes a field from an object of Class with an expr-lang
// expression over obj, e.g. "obj.Total * 1.2". Type defaults to string.
type Expression struct {
	Field string
	Type  string
	Class string
	Expr  string
}

func infoOf(f field.Field, ephemeral bool) FieldInfo {
	return FieldInfo{
		Name:      f.Name(),
		Type:      f.Type(),
		Class:     f.Class(),
		Getter:    f.Getter(),
		Ephemeral: ephemeral,
	}
}
