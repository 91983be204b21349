package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	xe "github.com/opst/footprintweb/pkg/errors"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
)

type CreateRequest struct {
	// Class requested. It may be a base class; the payload chooses the concrete one.
	Class string

	// ParentID is the known parent, or the container for classes selecting their parent.
	ParentID string

	Payload Payload
}

// Create builds an object from the request and commits it to store.
//
// When anything fails after commit, committed objects are removed again.
func (o *Orchestrator) Create(store *graph.Store, req CreateRequest) (*Result, error) {
	c := &Creation{
		Store:   store,
		Logger:  o.logger,
		Request: req,
		Values:  map[string]domain.Value{},
	}

	requested := o.hooksFor(req.Class)
	if err := requested.PreCreate(c); err != nil {
		return nil, err
	}
	if err := requested.PrepareInput(c); err != nil {
		return nil, err
	}

	class, err := o.resolveType(c.Request)
	if err != nil {
		return nil, err
	}
	c.Class = class
	hooks := o.hooksFor(class)

	decoded, err := Decode(store, class, c.Request.Payload)
	if err != nil {
		return nil, err
	}
	for k, v := range c.Values {
		decoded[k] = v
	}
	c.Values = decoded
	o.defaultName(c)
	if err := o.place(c); err != nil {
		return nil, err
	}

	if err := o.construct(c, hooks); err != nil {
		return nil, err
	}
	if err := hooks.PreAddToSystem(c); err != nil {
		return nil, err
	}

	committed, err := o.commit(c)
	if err != nil {
		return nil, o.compensate(c, committed, false, err)
	}

	linked, err := o.link(c)
	if err != nil {
		return nil, o.compensate(c, committed, linked, err)
	}
	if err := hooks.PostCreate(c); err != nil {
		return nil, o.compensate(c, committed, linked, err)
	}

	store.MarkDirty()
	w := store.Wrap(c.Object)
	result := &Result{
		Action: Created,
		ID:     w.ID(),
		Name:   w.Name(),
		Class:  w.Class(),
		WebIDs: w.MirroredWebIDs(),
	}
	if linked {
		result.Updated = []string{c.Parent.ID()}
	}
	if c.Override != nil {
		result.Override = summarize(store.Wrap(c.Override))
	}
	return result, nil
}

func (o *Orchestrator) resolveType(req CreateRequest) (string, error) {
	if _, err := o.catalog.Type(req.Class); err != nil {
		return "", err
	}
	class := req.Class
	if t := req.Payload.Type(); t != "" && t != class {
		if !o.catalog.IsA(t, req.Class) {
			return "", domerr.NewValidation(forms.TypeSelectorID, "%s is not a kind of %s", t, req.Class)
		}
		class = t
	}
	typ, err := o.catalog.Type(class)
	if err != nil {
		return "", err
	}
	if typ.Abstract {
		return "", domerr.NewValidation(forms.TypeSelectorID, "choose a type of %s", req.Class)
	}
	return class, nil
}

func (o *Orchestrator) label(class string) string {
	if l, err := o.config.Label(class); err == nil {
		return l
	}
	return class
}

// defaultName names the object "{label} {n+1}" when no name is submitted.
func (o *Orchestrator) defaultName(c *Creation) {
	if name, ok := c.Values["name"].(domain.Text); ok && strings.TrimSpace(string(name)) != "" {
		return
	}
	c.Values["name"] = domain.Text(fmt.Sprintf("%s %d", o.label(c.Class), c.Store.CountOf(c.Class)+1))
}

func (o *Orchestrator) lookup(store *graph.Store, id string, classOrBase string, field string) (*domain.Object, error) {
	if id == "" {
		return nil, domerr.NewValidation(field, "a %s is required", o.label(classOrBase))
	}
	w, err := store.GetByID(id)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if !o.catalog.IsA(w.Class(), classOrBase) {
		return nil, domerr.NewValidation(field, "%s is not a %s", w.Name(), o.label(classOrBase))
	}
	return w.Object(), nil
}

// allowed finds classes in filter for class, looking up its lineage.
func (o *Orchestrator) allowed(filter map[string][]string, class string) []string {
	for _, c := range o.catalog.Lineage(class) {
		if a, ok := filter[c]; ok {
			return a
		}
	}
	return nil
}

// place sets references to parents chosen in the request, as the strategy of the class tells.
func (o *Orchestrator) place(c *Creation) error {
	tc := o.config.TypeConfig(o.catalog, c.Class)
	req := c.Request

	switch forms.StrategyOf(tc) {
	case forms.WithCompanionObject:
		if tc.Companion == nil {
			return domerr.NewConfiguration(c.Class, "%s without companion", forms.WithCompanionObject)
		}
		return o.companion(c, tc.Companion)

	case forms.ChildOfKnownParent:
		if tc.Parent == nil {
			return domerr.NewConfiguration(c.Class, "%s without parent", forms.ChildOfKnownParent)
		}
		parent, err := o.lookup(c.Store, req.ParentID, tc.Parent.Class, forms.ParentFieldID)
		if err != nil {
			return err
		}
		if tc.Parent.Query != "" {
			q, ok := o.config.Queries[tc.Parent.Query]
			if !ok {
				return domerr.NewConfiguration(c.Class, "unknown candidate query %q", tc.Parent.Query)
			}
			if !slices.Contains(q(parent, o.catalog), c.Class) {
				return domerr.NewValidation(
					forms.TypeSelectorID, "%s cannot be added to %s", o.label(c.Class), parent.Name(),
				)
			}
		}
		if tc.Parent.Attribute != "" {
			c.Values[tc.Parent.Attribute] = domain.Ref{Object: parent}
		}
		if tc.Parent.ListAttribute != "" {
			c.Parent, c.ParentListAttr = parent, tc.Parent.ListAttribute
		}
		return nil

	case forms.ParentSelection:
		return o.selectParent(c, tc)

	case forms.NestedParentSelection:
		if tc.Parent == nil || tc.Nested == nil {
			return domerr.NewConfiguration(c.Class, "%s without parent or nested selection", forms.NestedParentSelection)
		}
		parent, err := o.lookup(c.Store, req.ParentID, tc.Parent.Class, forms.ParentFieldID)
		if err != nil {
			return err
		}
		resolve, ok := o.config.Resolvers[tc.Nested.Resolver]
		if !ok {
			return domerr.NewConfiguration(c.Class, "unknown nested resolver %q", tc.Nested.Resolver)
		}
		id := req.Payload.Nested()
		selectable := resolve(parent, c.Store)
		i := slices.IndexFunc(selectable, func(n *domain.Object) bool { return n.ID() == id })
		if id == "" || i < 0 {
			return domerr.NewValidation(forms.NestedFieldID, "choose one in %s", parent.Name())
		}
		nested := selectable[i]
		if !slices.Contains(o.allowed(tc.Nested.TypeFilter, nested.Class()), c.Class) {
			return domerr.NewValidation(
				forms.TypeSelectorID, "%s cannot be created for %s", o.label(c.Class), nested.Name(),
			)
		}
		c.Values[tc.Nested.Attribute] = domain.Ref{Object: nested}
		if tc.Parent.ListAttribute != "" {
			c.Parent, c.ParentListAttr = parent, tc.Parent.ListAttribute
		}
		return nil

	case forms.Simple:
		return nil
	}
	return domerr.NewConfiguration(c.Class, "unknown strategy %q", tc.Strategy)
}

func (o *Orchestrator) selectParent(c *Creation, tc forms.TypeConfig) error {
	sel := tc.Selection
	if sel == nil {
		return domerr.NewConfiguration(c.Class, "%s without selection", forms.ParentSelection)
	}
	payload := c.Request.Payload

	parent, err := o.lookup(c.Store, payload.Parent(), sel.Class, forms.ParentFieldID)
	if err != nil {
		return err
	}
	c.Values[sel.Attribute] = domain.Ref{Object: parent}

	allowed := o.allowed(sel.TypeFilter, parent.Class())
	inter := payload.Intermediate()
	if direct, ok := strings.CutPrefix(inter, forms.DirectCallPrefix); ok {
		if direct != parent.ID() {
			return domerr.NewValidation(forms.IntermediateFieldID, "direct call to another %s", o.label(sel.Class))
		}
	} else if inter != "" {
		if sel.Intermediate == nil {
			return domerr.NewValidation(forms.IntermediateFieldID, "%s is not called through anything", o.label(c.Class))
		}
		i, err := o.lookup(c.Store, inter, sel.Intermediate.Class, forms.IntermediateFieldID)
		if err != nil {
			return err
		}
		if i.Ref(sel.Intermediate.ParentAttribute).ID() != parent.ID() {
			return domerr.NewValidation(forms.IntermediateFieldID, "%s is not on %s", i.Name(), parent.Name())
		}
		c.Values[sel.Intermediate.Attribute] = domain.Ref{Object: i}
		allowed = o.allowed(sel.TypeFilter, i.Class())
	}
	if !slices.Contains(allowed, c.Class) {
		return domerr.NewValidation(forms.TypeSelectorID, "%s cannot be created there", o.label(c.Class))
	}

	if c.Request.ParentID != "" && sel.Container != nil {
		container, err := o.lookup(c.Store, c.Request.ParentID, sel.Container.Class, forms.ParentFieldID)
		if err != nil {
			return err
		}
		c.Parent, c.ParentListAttr = container, sel.Container.ListAttribute
	}
	return nil
}

func (o *Orchestrator) companion(c *Creation, comp *forms.Companion) error {
	values := map[string]domain.Value{}
	if p, ok := c.Request.Payload.Companion(comp.Class); ok {
		decoded, err := Decode(c.Store, comp.Class, p)
		if err != nil {
			return err
		}
		values = decoded
	}
	if name, ok := values["name"].(domain.Text); !ok || name == "" {
		values["name"] = domain.Text(fmt.Sprintf("%s %s", c.Values["name"], strings.ToLower(o.label(comp.Class))))
	}
	obj, err := o.catalog.Construct(comp.Class, values)
	if err != nil {
		return err
	}
	c.Companion = obj
	c.Generated = append(c.Generated, obj)
	c.Values[comp.Attribute] = domain.Ref{Object: obj}
	return nil
}

// construct the object, giving hooks one chance to recover.
func (o *Orchestrator) construct(c *Creation, hooks Hooks) error {
	obj, err := o.catalog.Construct(c.Class, c.Values)
	if err == nil {
		c.Object = obj
		return nil
	}
	rerr, ok := domerr.AsRecoverable(err)
	if !ok {
		return err
	}
	retry, herr := hooks.HandleCreationError(c, rerr)
	if herr != nil {
		return herr
	}
	if !retry {
		return err
	}
	o.logger.Infof("%s: retrying construction after %v", c.Class, err)
	obj, err = o.catalog.Construct(c.Class, c.Values)
	if err != nil {
		return err
	}
	c.Object = obj
	return nil
}

// commit adds generated objects then the object. It returns ids registered, in order.
func (o *Orchestrator) commit(c *Creation) ([]string, error) {
	committed := []string{}
	for _, obj := range slices.Concat(c.Generated, []*domain.Object{c.Object}) {
		if _, known := c.Store.Lookup(obj.ID()); known {
			continue
		}
		_, newcomers, err := c.Store.Add(obj)
		if err != nil {
			return committed, err
		}
		committed = append(committed, newcomers...)
		committed = append(committed, obj.ID())
	}
	return committed, nil
}

// link appends the object into the list of the parent.
func (o *Orchestrator) link(c *Creation) (bool, error) {
	if c.Parent == nil || c.ParentListAttr == "" || o.policy.skipParentLink(o.catalog, c.Class) {
		return false, nil
	}
	list := c.Parent.List(c.ParentListAttr)
	if list.Contains(c.Object.ID()) {
		return false, nil
	}
	p, ok := o.catalog.Param(c.Parent.Class(), c.ParentListAttr)
	if !ok {
		return false, domerr.NewConfiguration(c.Parent.Class(), "no list %s", c.ParentListAttr)
	}
	updated := append(slices.Clone(list), c.Object)
	if err := o.catalog.Check(c.Parent.Class(), p, updated); err != nil {
		return false, err
	}
	c.Parent.Set(c.ParentListAttr, updated)
	return true, nil
}

// compensate removes what a failed creation committed, newest first.
func (o *Orchestrator) compensate(c *Creation, committed []string, linked bool, cause error) error {
	if linked {
		c.Parent.Set(c.ParentListAttr, c.Parent.List(c.ParentListAttr).Without(c.Object.ID()))
	}
	cleanup := []error{}
	for i := len(committed) - 1; 0 <= i; i-- {
		if err := c.Store.Remove(committed[i]); err != nil {
			cleanup = append(cleanup, err)
		}
	}
	if len(cleanup) == 0 {
		return cause
	}
	o.logger.Warnf("%s: cleanup after failed creation: %v", c.Class, cleanup)
	return &domerr.CompensationFailure{Cause: cause, Cleanup: errors.Join(cleanup...)}
}
