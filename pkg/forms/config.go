package forms

import (
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/graph"
)

// strategies
const (
	Simple                = "simple"
	WithCompanionObject   = "with_companion_object"
	ChildOfKnownParent    = "child_of_known_parent"
	ParentSelection       = "parent_selection"
	NestedParentSelection = "nested_parent_selection"
)

// transforms
const (
	MultipleToSingle = "multiple_to_single"
)

// Companion is a required object created together with the primary one.
type Companion struct {
	Class string

	// Attribute of the primary object referring the companion.
	Attribute string
}

// KnownParent describes the parent identified by the caller.
type KnownParent struct {
	// Class or base class of the parent.
	Class string

	// ListAttribute of the parent which the new object joins. It may be empty.
	ListAttribute string

	// Attribute of the new object referring the parent. It may be empty.
	Attribute string

	// Query names a Config.Queries entry listing candidate classes for the parent.
	// When empty, candidates are static.
	Query string
}

// Intermediate is an optional second level selection under the parent.
type Intermediate struct {
	Class string

	// Attribute of the new object referring the intermediate.
	Attribute string

	// ParentAttribute of the intermediate referring the parent.
	ParentAttribute string
}

// Container is a list holder the caller may name as the place of the new object.
type Container struct {
	Class         string
	ListAttribute string
}

// Selection is the configuration of the parent_selection strategy.
type Selection struct {
	// Class or base class of parents.
	Class string

	// Attribute of the new object referring the parent.
	Attribute string

	Intermediate *Intermediate

	// TypeFilter maps a class of intermediates (or parents, for direct calls)
	// to classes which can be created under it.
	TypeFilter map[string][]string

	Container *Container
}

// Nested is the configuration of the nested_parent_selection strategy.
type Nested struct {
	// Resolver names a Config.Resolvers entry listing selectable objects under the parent.
	Resolver string

	// Attribute of the new object referring the selected object.
	Attribute string

	// TypeFilter maps a class of selected objects to classes which can be created for it.
	TypeFilter map[string][]string
}

// TypeConfig is the declarative form configuration of a class or a base class.
type TypeConfig struct {
	// Strategy name. Empty means Simple.
	Strategy string

	// Candidates are concrete classes offered. Empty means every concrete subclass.
	Candidates []string

	// Excluded attributes never appear in forms.
	Excluded []string

	// Requires lists classes which should have an instance before creating this class.
	Requires []string

	// Defaults override defaults of the modeling library on creation.
	Defaults map[string]domain.Value

	// DefaultLabels select the option with the label as the default of a select field.
	DefaultLabels map[string]string

	// Transforms by attribute.
	Transforms map[string]string

	Companion *Companion
	Parent    *KnownParent
	Selection *Selection
	Nested    *Nested
}

// Query lists candidate classes for a parent.
type Query func(parent *domain.Object, cat *catalog.Catalog) []string

// Resolver lists selectable objects under a parent.
type Resolver func(parent *domain.Object, store *graph.Store) []*domain.Object

type Config struct {
	// Labels of classes. Every class shown in forms needs one.
	Labels map[string]string

	// AttributeLabels override labels derived from attribute names.
	AttributeLabels map[string]string

	// Types by class or base class. The nearest entry in the lineage of a class applies.
	Types map[string]TypeConfig

	Queries   map[string]Query
	Resolvers map[string]Resolver

	// TextFallback reads parameters without resolvable kind as text, instead of failing.
	TextFallback bool
}

// Label of a class.
func (c *Config) Label(class string) (string, error) {
	l, ok := c.Labels[class]
	if !ok || l == "" {
		return "", domerr.NewConfiguration(class, "no label")
	}
	return l, nil
}

// TypeConfig finds the configuration applied to class.
//
// Excluded attributes are merged along the lineage.
func (c *Config) TypeConfig(cat *catalog.Catalog, class string) TypeConfig {
	ret := TypeConfig{}
	found := false
	excluded := []string{}
	for _, cls := range cat.Lineage(class) {
		tc, ok := c.Types[cls]
		if !ok {
			continue
		}
		excluded = append(excluded, tc.Excluded...)
		if !found {
			ret = tc
			found = true
		}
	}
	ret.Excluded = excluded
	return ret
}

func (c *Config) query(name string) (Query, error) {
	q, ok := c.Queries[name]
	if !ok {
		return nil, domerr.NewConfiguration("", "unknown candidate query %q", name)
	}
	return q, nil
}

func (c *Config) resolver(name string) (Resolver, error) {
	r, ok := c.Resolvers[name]
	if !ok {
		return nil, domerr.NewConfiguration("", "unknown nested resolver %q", name)
	}
	return r, nil
}
