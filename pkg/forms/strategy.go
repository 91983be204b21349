package forms

import (
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	xe "github.com/opst/footprintweb/pkg/errors"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/utils/slices"
)

// field ids of selections added by strategies. They are also payload keys.
const (
	ParentFieldID       = "parent"
	IntermediateFieldID = "intermediate"
	NestedFieldID       = "nested_selection"
)

// DirectCallPrefix marks intermediate options bypassing the intermediate: "direct_call_{parent id}".
const DirectCallPrefix = "direct_call_"

// CompanionForm is the form of the companion object, independent from the primary one.
type CompanionForm struct {
	Class     string    `json:"class"`
	Attribute string    `json:"attribute"`
	Structure Structure `json:"structure"`
}

// FormContext is everything needed to render a creation or edition form.
type FormContext struct {
	Strategy string `json:"strategy"`

	// Class requested. It may be a base class.
	Class string `json:"class"`
	Label string `json:"label"`

	// ObjectID is the id of the edited object. Empty on creation.
	ObjectID string `json:"object_id,omitempty"`

	Structure Structure      `json:"structure"`
	Companion *CompanionForm `json:"companion,omitempty"`

	// Parent known by the caller.
	Parent *Option `json:"parent,omitempty"`

	// Container known by the caller, which the new object joins.
	Container *Option `json:"container,omitempty"`

	ParentField       *Field `json:"parent_field,omitempty"`
	IntermediateField *Field `json:"intermediate_field,omitempty"`
	NestedField       *Field `json:"nested_field,omitempty"`

	Dynamic []*DynamicEntry `json:"dynamic"`
}

// ContextRequest carries what the caller knows about the place of the new object.
type ContextRequest struct {
	// ParentID is the known parent, or the container for strategies selecting parents.
	ParentID string
}

// StrategyOf tells the strategy name configured for tc.
func StrategyOf(tc TypeConfig) string {
	if tc.Strategy == "" {
		return Simple
	}
	return tc.Strategy
}

func (b *Builder) labelOr(class string, fallback string) string {
	if l, ok := b.config.Labels[class]; ok {
		return l
	}
	return fallback
}

// Candidates lists concrete classes offered when class is requested.
//
// Configured candidates of a base which are not class are ignored.
func (b *Builder) Candidates(class string) []string {
	tc := b.config.TypeConfig(b.catalog, class)
	configured := slices.Filter(tc.Candidates, func(c string) bool { return b.catalog.IsA(c, class) })
	if 0 < len(configured) {
		return configured
	}
	return b.catalog.Subclasses(class)
}

func (b *Builder) checkRequirements(tc TypeConfig, store *graph.Store) error {
	for _, r := range tc.Requires {
		if len(store.Inventory(r)) == 0 {
			return domerr.NewValidation("", "no %s is available. create one first", b.labelOr(r, r))
		}
	}
	return nil
}

// CreationContext builds the creation form of class.
func (b *Builder) CreationContext(class string, req ContextRequest, store *graph.Store) (*FormContext, error) {
	label, err := b.config.Label(class)
	if err != nil {
		return nil, err
	}
	tc := b.config.TypeConfig(b.catalog, class)
	if err := b.checkRequirements(tc, store); err != nil {
		return nil, err
	}

	fc := &FormContext{
		Strategy: StrategyOf(tc),
		Class:    class,
		Label:    label,
		Dynamic:  []*DynamicEntry{},
	}

	var st Structure
	var dynamic []*DynamicEntry
	switch fc.Strategy {
	case Simple:
		st, dynamic, err = b.Assemble(class, b.Candidates(class), store, nil)
	case WithCompanionObject:
		st, dynamic, err = b.withCompanion(fc, class, tc, store)
	case ChildOfKnownParent:
		st, dynamic, err = b.childOfKnownParent(fc, class, tc, req, store)
	case ParentSelection:
		st, dynamic, err = b.parentSelection(fc, class, tc, req, store)
	case NestedParentSelection:
		st, dynamic, err = b.nestedParentSelection(fc, class, tc, req, store)
	default:
		return nil, domerr.NewConfiguration(class, "unknown strategy %q", tc.Strategy)
	}
	if err != nil {
		return nil, err
	}

	if err := b.postProcess(&st, tc, false); err != nil {
		return nil, err
	}
	fc.Structure = st
	fc.Dynamic = append(fc.Dynamic, dynamic...)
	return fc, nil
}

// EditionContext builds the edition form of the object with id.
func (b *Builder) EditionContext(id string, store *graph.Store) (*FormContext, error) {
	w, err := store.Peek(id)
	if err != nil {
		return nil, err
	}
	obj := w.Object()
	label, err := b.config.Label(obj.Class())
	if err != nil {
		return nil, err
	}
	tc := b.config.TypeConfig(b.catalog, obj.Class())

	st, dynamic, err := b.Assemble(obj.Class(), []string{obj.Class()}, store, obj)
	if err != nil {
		return nil, err
	}
	if err := b.postProcess(&st, tc, true); err != nil {
		return nil, err
	}
	fc := &FormContext{
		Strategy:  StrategyOf(tc),
		Class:     obj.Class(),
		Label:     label,
		ObjectID:  obj.ID(),
		Structure: st,
		Dynamic:   dynamic,
	}

	if fc.Strategy == WithCompanionObject && tc.Companion != nil {
		if c := obj.Ref(tc.Companion.Attribute); c != nil {
			cst, cdyn, err := b.Assemble(c.Class(), []string{c.Class()}, store, c)
			if err != nil {
				return nil, err
			}
			if err := b.postProcess(&cst, b.config.TypeConfig(b.catalog, c.Class()), true); err != nil {
				return nil, err
			}
			fc.Companion = &CompanionForm{Class: c.Class(), Attribute: tc.Companion.Attribute, Structure: cst}
			fc.Dynamic = append(fc.Dynamic, cdyn...)
		}
	}
	return fc, nil
}

func (b *Builder) withCompanion(fc *FormContext, class string, tc TypeConfig, store *graph.Store) (Structure, []*DynamicEntry, error) {
	if tc.Companion == nil {
		return Structure{}, nil, domerr.NewConfiguration(class, "%s without companion", WithCompanionObject)
	}
	st, dynamic, err := b.Assemble(class, b.Candidates(class), store, nil)
	if err != nil {
		return Structure{}, nil, err
	}

	companion := tc.Companion.Class
	cst, cdyn, err := b.Assemble(companion, b.Candidates(companion), store, nil)
	if err != nil {
		return Structure{}, nil, err
	}
	if err := b.postProcess(&cst, b.config.TypeConfig(b.catalog, companion), false); err != nil {
		return Structure{}, nil, err
	}
	fc.Companion = &CompanionForm{Class: companion, Attribute: tc.Companion.Attribute, Structure: cst}
	return st, slices.Concat(dynamic, cdyn), nil
}

// KnownParent resolves the parent named by req for class configured with tc.
func (b *Builder) KnownParent(class string, tc TypeConfig, req ContextRequest, store *graph.Store) (*graph.Wrapper, error) {
	if tc.Parent == nil {
		return nil, domerr.NewConfiguration(class, "%s without parent", StrategyOf(tc))
	}
	parentLabel := b.labelOr(tc.Parent.Class, tc.Parent.Class)
	if req.ParentID == "" {
		return nil, domerr.NewValidation(
			ParentFieldID, "a %s is required to add a %s", parentLabel, b.labelOr(class, class),
		)
	}
	parent, err := store.GetByID(req.ParentID)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if !b.catalog.IsA(parent.Class(), tc.Parent.Class) {
		return nil, domerr.NewValidation(ParentFieldID, "%s is not a %s", parent.Name(), parentLabel)
	}
	return parent, nil
}

func (b *Builder) childOfKnownParent(fc *FormContext, class string, tc TypeConfig, req ContextRequest, store *graph.Store) (Structure, []*DynamicEntry, error) {
	parent, err := b.KnownParent(class, tc, req, store)
	if err != nil {
		return Structure{}, nil, err
	}
	fc.Parent = &Option{Value: parent.ID(), Label: parent.Name()}

	candidates := b.Candidates(class)
	if tc.Parent.Query != "" {
		q, err := b.config.query(tc.Parent.Query)
		if err != nil {
			return Structure{}, nil, err
		}
		candidates = q(parent.Object(), b.catalog)
	}
	if len(candidates) == 0 {
		return Structure{}, nil, domerr.NewValidation(
			"", "no %s can be added to %s", b.labelOr(class, class), parent.Name(),
		)
	}
	return b.Assemble(class, candidates, store, nil)
}

func (b *Builder) typeOptions(classes []string) ([]Option, error) {
	opts := make([]Option, 0, len(classes))
	for _, c := range classes {
		l, err := b.config.Label(c)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Option{Value: c, Label: l})
	}
	return opts, nil
}

// filtered finds classes allowed under class in filter, looking up its lineage.
func (b *Builder) filtered(filter map[string][]string, class string) []string {
	for _, c := range b.catalog.Lineage(class) {
		if allowed, ok := filter[c]; ok {
			return allowed
		}
	}
	return nil
}

// offered orders classes in the order of candidates of class.
func (b *Builder) offered(class string, classes []string) []string {
	return slices.Filter(b.Candidates(class), func(c string) bool {
		for _, o := range classes {
			if o == c {
				return true
			}
		}
		return false
	})
}

// dynamicTypes assembles candidates and makes the type selector follow the controlling field.
func (b *Builder) dynamicTypes(class string, candidates []string, store *graph.Store) (Structure, []*DynamicEntry, error) {
	st, dynamic, err := b.Assemble(class, candidates, store, nil)
	if err != nil {
		return Structure{}, nil, err
	}
	if st.TypeSelector == nil {
		opts, err := b.typeOptions(candidates)
		if err != nil {
			return Structure{}, nil, err
		}
		st.TypeSelector = &Field{
			ID:        TypeSelectorID,
			Attribute: TypeSelectorID,
			Label:     b.labelOr(class, "Type"),
			InputType: InputSelectType,
			Value:     candidates[0],
			Options:   opts,
		}
	}
	st.TypeSelector.Dynamic = true
	return st, dynamic, nil
}

func (b *Builder) parentSelection(fc *FormContext, class string, tc TypeConfig, req ContextRequest, store *graph.Store) (Structure, []*DynamicEntry, error) {
	sel := tc.Selection
	if sel == nil {
		return Structure{}, nil, domerr.NewConfiguration(class, "%s without selection", ParentSelection)
	}

	if req.ParentID != "" {
		if sel.Container == nil {
			return Structure{}, nil, domerr.NewValidation(
				ParentFieldID, "%s cannot be added to a container", b.labelOr(class, class),
			)
		}
		c, err := store.GetByID(req.ParentID)
		if err != nil {
			return Structure{}, nil, xe.Wrap(err)
		}
		if !b.catalog.IsA(c.Class(), sel.Container.Class) {
			return Structure{}, nil, domerr.NewValidation(
				ParentFieldID, "%s is not a %s", c.Name(), b.labelOr(sel.Container.Class, sel.Container.Class),
			)
		}
		fc.Container = &Option{Value: c.ID(), Label: c.Name()}
	}

	parents := store.Get(sel.Class)
	if len(parents) == 0 {
		return Structure{}, nil, domerr.NewValidation(
			ParentFieldID, "no %s is available. create one first", b.labelOr(sel.Class, sel.Class),
		)
	}

	parentField := &Field{
		ID:        ParentFieldID,
		Attribute: sel.Attribute,
		Label:     b.labelOr(sel.Class, b.attributeLabel(sel.Attribute)),
		InputType: InputSelectObject,
		Options:   []Option{},
	}
	intermediates := newDynamicEntry(IntermediateFieldID, ParentFieldID)
	types := newDynamicEntry(TypeSelectorID, IntermediateFieldID)
	classes := []string{}

	for _, p := range parents {
		parentField.Options = append(parentField.Options, Option{Value: p.ID(), Label: p.Name()})

		opts := []Option{}
		if direct := b.filtered(sel.TypeFilter, p.Class()); 0 < len(direct) {
			v := DirectCallPrefix + p.ID()
			opts = append(opts, Option{Value: v, Label: "Direct call to " + p.Name()})
			topts, err := b.typeOptions(direct)
			if err != nil {
				return Structure{}, nil, err
			}
			types.add(v, topts)
			classes = append(classes, direct...)
		}
		if sel.Intermediate != nil {
			for _, i := range store.Get(sel.Intermediate.Class) {
				if i.Object().Ref(sel.Intermediate.ParentAttribute).ID() != p.ID() {
					continue
				}
				allowed := b.filtered(sel.TypeFilter, i.Class())
				if len(allowed) == 0 {
					continue
				}
				opts = append(opts, Option{Value: i.ID(), Label: i.Name()})
				topts, err := b.typeOptions(allowed)
				if err != nil {
					return Structure{}, nil, err
				}
				types.add(i.ID(), topts)
				classes = append(classes, allowed...)
			}
		}
		intermediates.add(p.ID(), opts)
	}

	candidates := b.offered(class, classes)
	if len(candidates) == 0 {
		return Structure{}, nil, domerr.NewValidation(
			ParentFieldID, "no %s can be added to available %s", b.labelOr(class, class), b.labelOr(sel.Class, sel.Class),
		)
	}

	first := parentField.Options[0]
	parentField.Value = first.Value
	parentField.Selected = []Option{first}
	fc.ParentField = parentField

	intermediateLabel := "Call"
	if sel.Intermediate != nil {
		intermediateLabel = b.labelOr(sel.Intermediate.Class, b.attributeLabel(sel.Intermediate.Attribute))
	}
	intermediateField := &Field{
		ID:        IntermediateFieldID,
		Attribute: IntermediateFieldID,
		Label:     intermediateLabel,
		InputType: InputSelectDepend,
		Dynamic:   true,
	}
	if opts := intermediates.Options(first.Value); 0 < len(opts) {
		intermediateField.Value = opts[0].Value
	}
	if sel.Intermediate != nil {
		intermediateField.Attribute = sel.Intermediate.Attribute
	}
	fc.IntermediateField = intermediateField

	st, dynamic, err := b.dynamicTypes(class, candidates, store)
	if err != nil {
		return Structure{}, nil, err
	}
	return st, slices.Concat([]*DynamicEntry{intermediates, types}, dynamic), nil
}

func (b *Builder) nestedParentSelection(fc *FormContext, class string, tc TypeConfig, req ContextRequest, store *graph.Store) (Structure, []*DynamicEntry, error) {
	nested := tc.Nested
	if nested == nil {
		return Structure{}, nil, domerr.NewConfiguration(class, "%s without nested selection", NestedParentSelection)
	}
	parent, err := b.KnownParent(class, tc, req, store)
	if err != nil {
		return Structure{}, nil, err
	}
	fc.Parent = &Option{Value: parent.ID(), Label: parent.Name()}

	resolve, err := b.config.resolver(nested.Resolver)
	if err != nil {
		return Structure{}, nil, err
	}

	nestedField := &Field{
		ID:        NestedFieldID,
		Attribute: nested.Attribute,
		Label:     b.attributeLabel(nested.Attribute),
		InputType: InputSelectObject,
		Options:   []Option{},
	}
	types := newDynamicEntry(TypeSelectorID, NestedFieldID)
	classes := []string{}
	for _, o := range resolve(parent.Object(), store) {
		allowed := b.filtered(nested.TypeFilter, o.Class())
		if len(allowed) == 0 {
			continue
		}
		nestedField.Options = append(nestedField.Options, Option{Value: o.ID(), Label: o.Name()})
		topts, err := b.typeOptions(allowed)
		if err != nil {
			return Structure{}, nil, err
		}
		types.add(o.ID(), topts)
		classes = append(classes, allowed...)
	}
	if len(nestedField.Options) == 0 {
		return Structure{}, nil, domerr.NewValidation(
			NestedFieldID, "nothing in %s to add a %s for", parent.Name(), b.labelOr(class, class),
		)
	}
	nestedField.Value = nestedField.Options[0].Value
	nestedField.Selected = []Option{nestedField.Options[0]}
	fc.NestedField = nestedField

	st, dynamic, err := b.dynamicTypes(class, b.offered(class, classes), store)
	if err != nil {
		return Structure{}, nil, err
	}
	return st, slices.Concat([]*DynamicEntry{types}, dynamic), nil
}
