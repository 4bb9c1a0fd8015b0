package field

// Source is the declarative origin of a field: the class it is read from and
// the getter producing its value.
type Source struct {
	Class  string
	Getter string
}

// Field is an immutable catalog record. Provider fields carry no Source.
type Field struct {
	name      string
	fieldType Type
	source    *Source
}

// New validates and creates a provider field.
func New(name string, ft Type) (Field, error) {
	if err := ValidateName(name); err != nil {
		return Field{}, err
	}
	if _, err := ParseType(string(ft)); err != nil {
		return Field{}, err
	}
	return Field{name: name, fieldType: ft}, nil
}

// NewDeclared validates and creates a field discovered from class metadata.
func NewDeclared(name string, ft Type, class, getter string) (Field, error) {
	f, err := New(name, ft)
	if err != nil {
		return Field{}, err
	}
	if err := ValidateClass(class); err != nil {
		return Field{}, err
	}
	if err := ValidateGetter(getter); err != nil {
		return Field{}, err
	}
	f.source = &Source{Class: class, Getter: getter}
	return f, nil
}

// MustNew is New for static declarations; it panics on invalid input.
func MustNew(name string, ft Type) Field {
	f, err := New(name, ft)
	if err != nil {
		panic(err)
	}
	return f
}

// Reconstruct creates a Field without validation. An empty class yields a
// provider field.
func Reconstruct(name string, ft Type, class, getter string) Field {
	f := Field{name: name, fieldType: ft}
	if class != "" {
		f.source = &Source{Class: class, Getter: getter}
	}
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Type returns the value type.
func (f Field) Type() Type { return f.fieldType }

// Declared reports whether the field comes from class metadata.
func (f Field) Declared() bool { return f.source != nil }

// Class returns the source class, empty for provider fields.
func (f Field) Class() string {
	if f.source == nil {
		return ""
	}
	return f.source.Class
}

// Getter returns the getter name, empty for provider fields.
func (f Field) Getter() string {
	if f.source == nil {
		return ""
	}
	return f.source.Getter
}

// Equal compares two fields record-for-record.
func (f Field) Equal(o Field) bool {
	return f.name == o.name &&
		f.fieldType == o.fieldType &&
		f.Declared() == o.Declared() &&
		f.Class() == o.Class() &&
		f.Getter() == o.Getter()
}

// String returns a compact description, used in logs.
func (f Field) String() string {
	if f.source == nil {
		return f.name + ":" + string(f.fieldType)
	}
	return f.name + ":" + string(f.fieldType) + "@" + f.source.Class + "." + f.source.Getter
}
