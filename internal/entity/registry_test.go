package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/dataextract/internal/domain"
)

type named interface {
	Name() string
}

type person struct {
	name     string
	nickname *string
}

func (p person) Name() string { return p.name }

func (p *person) Nickname() *string { return p.nickname }

func (p person) Initials() (string, error) {
	if p.name == "" {
		return "", errors.New("no name")
	}
	return p.name[:1], nil
}

func (p person) Greet(other string) string { return "hi " + other }

type employee struct {
	person
	title string
}

func (e employee) Title() string { return e.title }

type robot struct{ serial string }

func (r *robot) GetField(getter string) (any, error) {
	if getter == "Serial" {
		return r.serial, nil
	}
	return nil, fmt.Errorf("robot: %w", domain.ErrUnknownGetter)
}

func (r *robot) Model() string { return "rx" }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.MustRegister("test.Person", person{})
	r.MustRegister("test.Employee", &employee{})
	r.MustRegister("test.Named", (*named)(nil))
	r.MustRegister("test.Robot", &robot{})
	return r
}

func TestRegister_Errors(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("bad class", person{}); !errors.Is(err, domain.ErrInvalidClass) {
		t.Errorf("error = %v, want ErrInvalidClass", err)
	}
	if err := r.Register("test.Nil", nil); !errors.Is(err, domain.ErrNotObject) {
		t.Errorf("error = %v, want ErrNotObject", err)
	}
	if err := r.Register("test.Int", 42); !errors.Is(err, domain.ErrNotObject) {
		t.Errorf("error = %v, want ErrNotObject", err)
	}
	r.MustRegister("test.Person", person{})
	if err := r.Register("test.Person", person{}); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Errorf("error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestClasses_Order(t *testing.T) {
	r := newTestRegistry(t)
	got := r.Classes()
	want := []string{"test.Person", "test.Employee", "test.Named", "test.Robot"}
	if len(got) != len(want) {
		t.Fatalf("Classes() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Classes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsA(t *testing.T) {
	r := newTestRegistry(t)
	tests := []struct {
		obj   any
		class string
		want  bool
	}{
		{person{}, "test.Person", true},
		{&person{}, "test.Person", true},
		{employee{}, "test.Person", true},
		{&employee{}, "test.Employee", true},
		{person{}, "test.Employee", false},
		{person{}, "test.Named", true},
		{employee{}, "test.Named", true},
		{&robot{}, "test.Named", false},
		{&robot{}, "test.Unknown", false},
		{nil, "test.Person", false},
	}
	for _, tt := range tests {
		if got := r.IsA(tt.obj, tt.class); got != tt.want {
			t.Errorf("IsA(%T, %s) = %v, want %v", tt.obj, tt.class, got, tt.want)
		}
	}
}

func TestIsObject(t *testing.T) {
	var nilPerson *person
	tests := []struct {
		v    any
		want bool
	}{
		{person{}, true},
		{&person{}, true},
		{nilPerson, false},
		{nil, false},
		{"string", false},
		{42, false},
		{map[string]any{}, false},
	}
	for _, tt := range tests {
		if got := IsObject(tt.v); got != tt.want {
			t.Errorf("IsObject(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestCall(t *testing.T) {
	r := newTestRegistry(t)
	nick := "bob"

	v, err := r.Call(person{name: "Robert"}, "Name")
	if err != nil || v != "Robert" {
		t.Errorf("Call(Name) = %v, %v", v, err)
	}

	// pointer receiver on a value object
	v, err = r.Call(person{nickname: &nick}, "Nickname")
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := v.(*string); !ok || *p != "bob" {
		t.Errorf("Call(Nickname) = %#v", v)
	}

	// typed nil pointer is normalized
	v, err = r.Call(&person{}, "Nickname")
	if err != nil || v != nil {
		t.Errorf("Call(Nickname) nil = %#v, %v", v, err)
	}

	// promoted method through embedding
	v, err = r.Call(employee{person: person{name: "Ann"}, title: "cto"}, "Name")
	if err != nil || v != "Ann" {
		t.Errorf("Call(embedded Name) = %v, %v", v, err)
	}

	v, err = r.Call(person{name: "Zed"}, "Initials")
	if err != nil || v != "Z" {
		t.Errorf("Call(Initials) = %v, %v", v, err)
	}
}

func TestCall_Errors(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Call(person{}, "Initials"); err == nil {
		t.Error("expected getter error")
	}
	if _, err := r.Call(person{}, "Greet"); !errors.Is(err, domain.ErrUnknownGetter) {
		t.Errorf("method with args: error = %v, want ErrUnknownGetter", err)
	}
	if _, err := r.Call(person{}, "Missing"); !errors.Is(err, domain.ErrUnknownGetter) {
		t.Errorf("error = %v, want ErrUnknownGetter", err)
	}
	if _, err := r.Call("nope", "Name"); !errors.Is(err, domain.ErrNotObject) {
		t.Errorf("error = %v, want ErrNotObject", err)
	}
}

func TestCall_FieldGetter(t *testing.T) {
	r := newTestRegistry(t)
	rb := &robot{serial: "S-1"}

	v, err := r.Call(rb, "Serial")
	if err != nil || v != "S-1" {
		t.Errorf("Call(Serial) = %v, %v", v, err)
	}
	// falls back to methods
	v, err = r.Call(rb, "Model")
	if err != nil || v != "rx" {
		t.Errorf("Call(Model) = %v, %v", v, err)
	}
}

func TestNew(t *testing.T) {
	r := newTestRegistry(t)
	obj, err := r.New("test.Employee")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := obj.(*employee); !ok {
		t.Errorf("New() = %T, want *employee", obj)
	}
	if _, err := r.New("test.Named"); !errors.Is(err, domain.ErrUnknownClass) {
		t.Errorf("interface class: error = %v, want ErrUnknownClass", err)
	}
	if _, err := r.New("test.Missing"); !errors.Is(err, domain.ErrUnknownClass) {
		t.Errorf("error = %v, want ErrUnknownClass", err)
	}
}

type badge struct{ label string }

func (b *badge) Label() string { return b.label }

type member struct {
	*badge
	id int
}

type node struct {
	*node
	id int
}

func (n node) ID() int { return n.id }

func TestIsA_EmbeddedPointer(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("test.Badge", &badge{})
	r.MustRegister("test.Person", person{})

	if !r.IsA(member{id: 1}, "test.Badge") {
		t.Error("IsA(member with nil badge) = false, want true")
	}
	// self-embedding types terminate
	if r.IsA(node{}, "test.Badge") {
		t.Error("IsA(node, test.Badge) = true")
	}
	if r.IsA(&node{}, "test.Person") {
		t.Error("IsA(*node, test.Person) = true")
	}
}

func TestCall_NilEmbeddedPointer(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("test.Badge", &badge{})

	v, err := r.Call(member{id: 1}, "Label")
	if err != nil || v != nil {
		t.Errorf("Call(Label) through nil embed = %#v, %v, want nil", v, err)
	}
	v, err = r.Call(&member{badge: &badge{label: "gold"}}, "Label")
	if err != nil || v != "gold" {
		t.Errorf("Call(Label) = %v, %v", v, err)
	}

	// declared on the outer type, shadowing the nil embedded one
	v, err = r.Call(node{id: 3}, "ID")
	if err != nil || v != 3 {
		t.Errorf("Call(ID) = %v, %v", v, err)
	}
}
