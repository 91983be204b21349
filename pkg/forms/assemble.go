package forms

import (
	"fmt"

	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/utils/maps"
	"github.com/opst/footprintweb/pkg/utils/slices"
)

// Section is the form of one concrete class.
type Section struct {
	Class  string  `json:"class"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// Structure is a form of one or more candidate classes.
//
// With more than one candidate, TypeSelector chooses the section to show.
type Structure struct {
	TypeSelector *Field    `json:"type_selector,omitempty"`
	Sections     []Section `json:"sections"`
}

// Field finds a field by id.
func (s *Structure) Field(id string) (*Field, bool) {
	if s.TypeSelector != nil && s.TypeSelector.ID == id {
		return s.TypeSelector, true
	}
	for i := range s.Sections {
		for j := range s.Sections[i].Fields {
			if s.Sections[i].Fields[j].ID == id {
				return &s.Sections[i].Fields[j], true
			}
		}
	}
	return nil, false
}

// Assemble builds the form for candidates, concrete classes of base.
//
// With edit, fields show the values of the object; otherwise they show defaults
// for a new object. Timeseries fields come after the others in each section.
func (b *Builder) Assemble(base string, candidates []string, store *graph.Store, edit *domain.Object) (Structure, []*DynamicEntry, error) {
	if len(candidates) == 0 {
		return Structure{}, nil, domerr.NewConfiguration(base, "no candidate class")
	}

	st := Structure{Sections: []Section{}}
	dynamic := []*DynamicEntry{}
	typeOptions := []Option{}
	for _, class := range candidates {
		if !b.catalog.IsA(class, base) {
			return Structure{}, nil, domerr.NewConfiguration(base, "candidate %s is not a %s", class, base)
		}
		label, err := b.config.Label(class)
		if err != nil {
			return Structure{}, nil, err
		}
		typeOptions = append(typeOptions, Option{Value: class, Label: label})

		sig, err := b.Signature(class)
		if err != nil {
			return Structure{}, nil, err
		}
		values := b.values(class, label, sig, store, edit)

		fields := []Field{}
		for _, p := range sig.Values() {
			f, entry, err := b.Field(class, p, values[p.Name], store)
			if err != nil {
				return Structure{}, nil, err
			}
			fields = append(fields, f)
			if entry != nil {
				dynamic = append(dynamic, entry)
			}
		}
		scalars, series := slices.Partition(fields, func(f Field) bool { return f.InputType != InputTimeseries })
		st.Sections = append(st.Sections, Section{
			Class:  class,
			Label:  label,
			Fields: slices.Concat(scalars, series),
		})
	}

	if 1 < len(candidates) {
		selected := candidates[0]
		if edit != nil {
			selected = edit.Class()
		}
		label, ok := b.config.Labels[base]
		if !ok {
			label = "Type"
		}
		st.TypeSelector = &Field{
			ID:        TypeSelectorID,
			Attribute: TypeSelectorID,
			Label:     label,
			InputType: InputSelectType,
			Value:     selected,
			Options:   typeOptions,
		}
	}
	return st, dynamic, nil
}

// values shown in the form of class.
func (b *Builder) values(class string, label string, sig maps.Map[string, domain.Param], store *graph.Store, edit *domain.Object) map[string]domain.Value {
	values := map[string]domain.Value{}
	if edit != nil {
		for _, p := range sig.Values() {
			if v, ok := edit.Get(p.Name); ok {
				values[p.Name] = v
			}
		}
		return values
	}

	overrides := b.config.TypeConfig(b.catalog, class).Defaults
	for _, p := range sig.Values() {
		if v, ok := overrides[p.Name]; ok {
			values[p.Name] = v
		} else if p.Default != nil {
			values[p.Name] = p.Default
		}
	}
	values["name"] = domain.Text(fmt.Sprintf("%s %d", label, store.CountOf(class)+1))

	for _, p := range sig.Values() {
		if p.Kind != domain.KindConditionalChoice || values[p.Name] != nil {
			continue
		}
		controller, ok := values[p.DependsOn]
		if !ok {
			continue
		}
		if choices := p.ConditionalValues[controller.String()]; 0 < len(choices) {
			values[p.Name] = domain.Choice(choices[0])
		}
	}
	return values
}
