package dataextract

import (
	"context"
	"errors"
)

// --- Fixtures ---

type person struct {
	_ struct{} `dataextract:"fields=name,person.name;getter=GetName"`
	_ struct{} `dataextract:"fields=person.age;getter=GetAge;type=int"`
	_ struct{} `dataextract:"fields=person.bio;getter=GetBio"`

	Name string
	Age  int
	Bio  *string
}

func (p *person) GetName() string { return p.Name }
func (p *person) GetAge() int     { return p.Age }
func (p *person) GetBio() *string { return p.Bio }
func (p *person) Text() string    { return p.Name }

// member reuses the person metadata through an optional embedded pointer.
type member struct {
	*person
	ID string
}

type product struct {
	_ struct{} `dataextract:"fields=name,product.name;getter=GetName"`

	Name  string
	Price float64
}

func (p *product) GetName() string { return p.Name }

// --- Mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type checkingEmbedder struct {
	mockEmbedder
	healthErr error
}

func (m *checkingEmbedder) HealthCheck(context.Context) error { return m.healthErr }

type mockProvider struct {
	fields    []Field
	values    []Value
	extractFn func(obj any) ([]Value, error)
}

func (m *mockProvider) Fields(context.Context) ([]Field, error) { return m.fields, nil }

func (m *mockProvider) Extract(_ context.Context, obj any) ([]Value, error) {
	if m.extractFn != nil {
		return m.extractFn(obj)
	}
	return m.values, nil
}

var errProviderDown = errors.New("provider down")
