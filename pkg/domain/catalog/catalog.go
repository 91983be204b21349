// Package catalog is the registry of domain types.
//
// It knows constructor signatures, defaults, categorical option tables and
// construction-time validation of every class, and the reference instances
// (countries, devices, networks) objects may refer without creating them.
package catalog

import (
	"fmt"
	"slices"

	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/utils/maps"
)

type Catalog struct {
	types maps.Map[string, *domain.Type]
	seeds maps.Map[string, Seed]
}

// New creates a catalog with types. Bases should come before their subclasses.
func New(types ...*domain.Type) (*Catalog, error) {
	c := &Catalog{
		types: maps.NewOrdered[string, *domain.Type](),
		seeds: maps.NewOrdered[string, Seed](),
	}
	for _, t := range types {
		if err := c.Register(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register a type.
func (c *Catalog) Register(t *domain.Type) error {
	if _, ok := c.types.Get(t.Name); ok {
		return domerr.NewConfiguration(t.Name, "registered twice")
	}
	if t.Base != "" {
		if _, ok := c.types.Get(t.Base); !ok {
			return domerr.NewConfiguration(t.Name, "unknown base class %q", t.Base)
		}
	}
	c.types.Set(t.Name, t)
	return nil
}

// Type looks up a class.
func (c *Catalog) Type(class string) (*domain.Type, error) {
	t, ok := c.types.Get(class)
	if !ok {
		return nil, domerr.NewMissing("class", class)
	}
	return t, nil
}

// Types in registration order.
func (c *Catalog) Types() []*domain.Type {
	return c.types.Values()
}

// Lineage returns the class and its bases, the class first.
func (c *Catalog) Lineage(class string) []string {
	ret := []string{}
	for class != "" {
		t, ok := c.types.Get(class)
		if !ok {
			break
		}
		ret = append(ret, class)
		class = t.Base
	}
	return ret
}

// IsA reports whether class is classOrBase or one of its subclasses.
func (c *Catalog) IsA(class string, classOrBase string) bool {
	return slices.Contains(c.Lineage(class), classOrBase)
}

// Subclasses lists concrete classes which are base or derived from base, in registration order.
func (c *Catalog) Subclasses(base string) []string {
	ret := []string{}
	for _, t := range c.types.Values() {
		if !t.Abstract && c.IsA(t.Name, base) {
			ret = append(ret, t.Name)
		}
	}
	return ret
}

// Params returns the full constructor signature of class, "name" excluded.
//
// Inherited parameters come first. A subclass parameter overrides the inherited one in place.
func (c *Catalog) Params(class string) ([]domain.Param, error) {
	if _, err := c.Type(class); err != nil {
		return nil, err
	}
	lineage := c.Lineage(class)
	params := maps.NewOrdered[string, domain.Param]()
	for i := len(lineage) - 1; 0 <= i; i-- {
		t, _ := c.types.Get(lineage[i])
		for _, p := range t.Params {
			params.Set(p.Name, p)
		}
	}
	return params.Values(), nil
}

// Param finds a parameter of class, inherited ones included.
func (c *Catalog) Param(class string, attr string) (domain.Param, bool) {
	params, err := c.Params(class)
	if err != nil {
		return domain.Param{}, false
	}
	for _, p := range params {
		if p.Name == attr {
			return p, true
		}
	}
	return domain.Param{}, false
}

// CanBeNegative reports whether attr of class may hold a negative number.
func (c *Catalog) CanBeNegative(class string, attr string) bool {
	for _, cls := range c.Lineage(class) {
		t, _ := c.types.Get(cls)
		if t.CanBeNegative(attr) {
			return true
		}
	}
	return false
}

// Calculated lists attributes of class computed by the modeling library, inherited ones included.
func (c *Catalog) Calculated(class string) []string {
	ret := []string{}
	for _, cls := range c.Lineage(class) {
		t, _ := c.types.Get(cls)
		for _, attr := range t.Calculated {
			if !slices.Contains(ret, attr) {
				ret = append(ret, attr)
			}
		}
	}
	return ret
}

// Construct creates an object of class from values.
//
// Missing values are filled with defaults; a missing conditional choice defaults to
// the first choice for its controlling value. A missing required value, a value of a
// wrong kind or a forbidden negative number is a ValidationError. It runs
// validations of the class and its bases at last.
func (c *Catalog) Construct(class string, values map[string]domain.Value) (*domain.Object, error) {
	t, err := c.Type(class)
	if err != nil {
		return nil, err
	}
	if t.Abstract {
		return nil, domerr.NewConfiguration(class, "abstract class cannot be constructed")
	}

	name, ok := values["name"].(domain.Text)
	if !ok || name == "" {
		return nil, domerr.NewValidation("name", "name of %s is required", class)
	}

	params, err := c.Params(class)
	if err != nil {
		return nil, err
	}
	obj := domain.NewObject(class, string(name))
	pending := []domain.Param{}
	for _, p := range params {
		v, ok := values[p.Name]
		if !ok || v == nil {
			if p.Default != nil {
				obj.Set(p.Name, cloneDefault(p.Default))
				continue
			}
			if p.Kind == domain.KindConditionalChoice {
				pending = append(pending, p)
				continue
			}
			if p.Optional {
				continue
			}
			return nil, domerr.NewValidation(p.Name, "%s of %s is required", p.Name, class)
		}
		if err := c.Check(class, p, v); err != nil {
			return nil, err
		}
		obj.Set(p.Name, v)
	}

	for _, p := range pending {
		if controller, ok := obj.Get(p.DependsOn); ok {
			if choices := p.ConditionalValues[controller.String()]; 0 < len(choices) {
				obj.Set(p.Name, domain.Choice(choices[0]))
				continue
			}
		}
		if !p.Optional {
			return nil, domerr.NewValidation(p.Name, "%s of %s is required", p.Name, class)
		}
	}

	if err := c.Validate(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// checkConditional: a conditional choice should be one of choices for its controlling value.
func checkConditional(obj *domain.Object, p domain.Param) error {
	if p.Kind != domain.KindConditionalChoice {
		return nil
	}
	v, ok := obj.Get(p.Name)
	if !ok {
		return nil
	}
	controller, ok := obj.Get(p.DependsOn)
	if !ok {
		return domerr.NewValidation(p.DependsOn, "%s is required to choose %s", p.DependsOn, p.Name)
	}
	if !slices.Contains(p.ConditionalValues[controller.String()], v.String()) {
		return domerr.NewValidation(
			p.Name, "%q is not a choice of %s for %s %q", v, p.Name, p.DependsOn, controller,
		)
	}
	return nil
}

func cloneDefault(v domain.Value) domain.Value {
	switch v := v.(type) {
	case domain.RefList:
		return slices.Clone(v)
	case domain.Structured:
		ret := domain.Structured{}
		for k, e := range v {
			ret[k] = e
		}
		return ret
	default:
		return v
	}
}

// Check that v can be a value of the parameter p of class.
func (c *Catalog) Check(class string, p domain.Param, v domain.Value) error {
	mismatch := func() error {
		return domerr.NewValidation(p.Name, "%s expects %s value, got %T", p.Name, p.Kind, v)
	}

	switch p.Kind {
	case domain.KindText:
		if _, ok := v.(domain.Text); !ok {
			return mismatch()
		}
	case domain.KindChoice:
		ch, ok := v.(domain.Choice)
		if !ok {
			return mismatch()
		}
		if !slices.Contains(p.ListValues, string(ch)) {
			return domerr.NewValidation(p.Name, "%q is not a choice of %s", ch, p.Name)
		}
	case domain.KindConditionalChoice:
		if _, ok := v.(domain.Choice); !ok {
			return mismatch()
		}
	case domain.KindQuantity, domain.KindDimensionless:
		q, ok := v.(domain.Quantity)
		if !ok {
			return mismatch()
		}
		if q.Value < 0 && !c.CanBeNegative(class, p.Name) {
			return domerr.NewValidation(p.Name, "%s of %s cannot be negative", p.Name, class)
		}
	case domain.KindObject:
		r, ok := v.(domain.Ref)
		if !ok {
			return mismatch()
		}
		if r.Object == nil {
			if p.Optional {
				return nil
			}
			return domerr.NewValidation(p.Name, "%s of %s is required", p.Name, class)
		}
		if !c.IsA(r.Object.Class(), p.Class) {
			return domerr.NewValidation(p.Name, "%s expects %s, got %s", p.Name, p.Class, r.Object.Class())
		}
	case domain.KindObjectList:
		l, ok := v.(domain.RefList)
		if !ok {
			return mismatch()
		}
		for _, o := range l {
			if !c.IsA(o.Class(), p.Class) {
				return domerr.NewValidation(p.Name, "%s expects %s, got %s", p.Name, p.Class, o.Class())
			}
		}
	case domain.KindTimeseries:
		if _, ok := v.(domain.Timeseries); !ok {
			return mismatch()
		}
	case domain.KindStructured:
		if _, ok := v.(domain.Structured); !ok {
			return mismatch()
		}
	default:
		return domerr.NewConfiguration(class, "parameter %s has no resolvable type", p.Name)
	}
	return nil
}

// Validate runs validations of the class of obj and its bases, bases first.
//
// Conditional choices are checked against their controlling values before them.
func (c *Catalog) Validate(obj *domain.Object) error {
	params, err := c.Params(obj.Class())
	if err != nil {
		return err
	}
	for _, p := range params {
		if err := checkConditional(obj, p); err != nil {
			return err
		}
	}

	lineage := c.Lineage(obj.Class())
	for i := len(lineage) - 1; 0 <= i; i-- {
		t, _ := c.types.Get(lineage[i])
		if t.Validate == nil {
			continue
		}
		if err := t.Validate(obj); err != nil {
			return err
		}
	}
	return nil
}

// MustNew is New for built-in tables. It panics on error.
func MustNew(types ...*domain.Type) *Catalog {
	c, err := New(types...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}
