package expression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/entity"
)

type order struct {
	Total float64
	Lines []string
	Note  *string
}

func (o *order) Currency() string { return "EUR" }

type refund struct {
	Amount float64
}

// priorityOrder is-a order; the embedded struct shifts field positions.
type priorityOrder struct {
	Carrier string
	order
}

func newRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	r := entity.NewRegistry()
	r.MustRegister("order", &order{})
	r.MustRegister("refund", &refund{})
	return r
}

func values(recs []*collected.Data) map[string]any {
	out := make(map[string]any, len(recs))
	for _, r := range recs {
		v, _, _ := r.First(field.Types())
		out[r.Field()] = v
	}
	return out
}

func TestProvider(t *testing.T) {
	p, err := New([]Rule{
		{Field: "order.gross", Type: "float", Class: "order", Expr: "obj.Total * 2"},
		{Field: "order.lines", Type: "int", Class: "order", Expr: "len(obj.Lines)"},
		{Field: "order.currency", Class: "order", Expr: "obj.Currency()"},
		{Field: "refund.amount", Type: "float", Class: "refund", Expr: "obj.Amount"},
	}, newRegistry(t), zap.NewNop())
	require.NoError(t, err)

	fields, err := p.ProvidedFields(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, "order.gross", fields[0].Name())
	assert.Equal(t, field.Float, fields[0].Type())
	assert.Equal(t, field.String, fields[2].Type(), "type defaults to string")
	assert.False(t, fields[0].Declared())

	recs, err := p.ExtractData(context.Background(), &order{Total: 10, Lines: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"order.gross":    20.0,
		"order.lines":    2,
		"order.currency": "EUR",
	}, values(recs))
}

func TestProvider_NilSkipped(t *testing.T) {
	p, err := New([]Rule{
		{Field: "order.note", Class: "order", Expr: "obj.Note"},
	}, newRegistry(t), zap.NewNop())
	require.NoError(t, err)

	recs, err := p.ExtractData(context.Background(), &order{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestProvider_Subclass(t *testing.T) {
	p, err := New([]Rule{
		{Field: "order.gross", Type: "float", Class: "order", Expr: "obj.Total * 2"},
	}, newRegistry(t), zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		recs, err := p.ExtractData(context.Background(), &priorityOrder{Carrier: "dhl", order: order{Total: 7}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"order.gross": 14.0}, values(recs))
	}

	recs, err := p.ExtractData(context.Background(), &order{Total: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"order.gross": 2.0}, values(recs))
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		kind error
	}{
		{"field", Rule{Field: "Order", Class: "order", Expr: "1"}, domain.ErrInvalidField},
		{"type", Rule{Field: "x", Type: "bool", Class: "order", Expr: "1"}, domain.ErrInvalidType},
		{"class", Rule{Field: "x", Class: "9order", Expr: "1"}, domain.ErrInvalidClass},
		{"syntax", Rule{Field: "x", Class: "order", Expr: "obj.Total +"}, nil},
		{"unknown member", Rule{Field: "x", Class: "order", Expr: "obj.Missing"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Rule{tt.rule}, newRegistry(t), zap.NewNop())
			require.Error(t, err)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
		})
	}
}
