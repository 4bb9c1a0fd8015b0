// Package expression provides fields computed by expr-lang programs over
// objects of a given class.
package expression

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

// objVar is the variable an expression reads the object from.
const objVar = "obj"

// Rule declares one computed field, e.g. in YAML:
//
//	expressions:
//	  - field: order.gross
//	    type: float
//	    class: demo.Order
//	    expr: obj.Total * 1.21
type Rule struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
	Class string `yaml:"class"`
	Expr  string `yaml:"expr"`
}

// Classes resolves classes for type checking and is-a matching.
type Classes interface {
	IsA(obj any, class string) bool
	New(class string) (any, error)
}

type program struct {
	field   field.Field
	class   string
	source  string
	typ     reflect.Type // type the program was checked against; nil if unchecked
	program *vm.Program

	// Field paths are resolved at compile time, so subclasses (embedding
	// structs) get their own program.
	byType sync.Map // reflect.Type -> *vm.Program
}

// Compile-time check: Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)

// Provider evaluates compiled rules. Its field list is static, so it can be
// registered as cacheable.
type Provider struct {
	programs []*program
	classes  Classes
	logger   *zap.Logger
}

// New validates and compiles every rule. Rules on instantiable classes are
// type checked against a zero value of the class.
func New(rules []Rule, classes Classes, logger *zap.Logger) (*Provider, error) {
	p := &Provider{classes: classes, logger: logger}
	for i, r := range rules {
		ft := field.String
		if r.Type != "" {
			t, err := field.ParseType(r.Type)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			ft = t
		}
		f, err := field.New(r.Field, ft)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if err := field.ValidateClass(r.Class); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		var (
			opts []expr.Option
			typ  reflect.Type
		)
		if sample, err := classes.New(r.Class); err == nil {
			opts = append(opts, expr.Env(map[string]any{objVar: sample}))
			typ = reflect.TypeOf(sample)
		}
		prg, err := expr.Compile(r.Expr, opts...)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): compile %q: %w", i, r.Field, r.Expr, err)
		}

		p.programs = append(p.programs, &program{field: f, class: r.Class, source: r.Expr, typ: typ, program: prg})
	}
	return p, nil
}

// ProvidedFields returns one field per rule, in rule order.
func (p *Provider) ProvidedFields(_ context.Context) ([]field.Field, error) {
	out := make([]field.Field, len(p.programs))
	for i, prg := range p.programs {
		out[i] = prg.field
	}
	return out, nil
}

// ExtractData runs the rules whose class obj is. Nil results are skipped.
func (p *Provider) ExtractData(_ context.Context, obj any) ([]*collected.Data, error) {
	var out []*collected.Data
	env := map[string]any{objVar: obj}
	for _, prg := range p.programs {
		if !p.classes.IsA(obj, prg.class) {
			continue
		}
		compiled, err := prg.forType(obj)
		if err != nil {
			return nil, err
		}
		v, err := vm.Run(compiled, env)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s (%q): %w", prg.field.Name(), prg.source, err)
		}
		if isNil(v) {
			continue
		}
		d, err := collected.Of(prg.field.Name(), prg.field.Type(), v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// forType returns the program checked against the dynamic type of obj.
func (p *program) forType(obj any) (*vm.Program, error) {
	t := reflect.TypeOf(obj)
	if p.typ == nil || t == p.typ {
		return p.program, nil
	}
	if cached, ok := p.byType.Load(t); ok {
		return cached.(*vm.Program), nil
	}
	prg, err := expr.Compile(p.source, expr.Env(map[string]any{objVar: obj}))
	if err != nil {
		return nil, fmt.Errorf("compile %s (%q) for %s: %w", p.field.Name(), p.source, t, err)
	}
	actual, _ := p.byType.LoadOrStore(t, prg)
	return actual.(*vm.Program), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
