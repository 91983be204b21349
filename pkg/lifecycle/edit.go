package lifecycle

import (
	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
)

type EditRequest struct {
	ID      string
	Payload Payload
}

type change struct {
	object   *domain.Object
	attr     string
	previous domain.Value
	next     domain.Value
}

// Edit rewrites attributes of an object which differ from the submitted values.
//
// The companion of the object is edited together when the payload carries it.
func (o *Orchestrator) Edit(store *graph.Store, req EditRequest) (*Result, error) {
	w, err := store.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	obj := w.Object()

	values, err := Decode(store, obj.Class(), req.Payload)
	if err != nil {
		return nil, err
	}
	e := &Edition{Store: store, Logger: o.logger, Request: req, Object: obj, Values: values}
	if err := o.hooksFor(obj.Class()).PreEdit(e); err != nil {
		return nil, err
	}

	changes, err := o.diff(obj, e.Values)
	if err != nil {
		return nil, err
	}
	changed := []string{}
	for _, ch := range changes {
		changed = append(changed, ch.attr)
	}

	tc := o.config.TypeConfig(o.catalog, obj.Class())
	var companion *domain.Object
	if forms.StrategyOf(tc) == forms.WithCompanionObject && tc.Companion != nil {
		companion = obj.Ref(tc.Companion.Attribute)
	}
	if companion != nil {
		if cp, ok := req.Payload.Companion(companion.Class()); ok {
			cvalues, err := Decode(store, companion.Class(), cp)
			if err != nil {
				return nil, err
			}
			cchanges, err := o.diff(companion, cvalues)
			if err != nil {
				return nil, err
			}
			for _, ch := range cchanges {
				changed = append(changed, tc.Companion.Attribute+"."+ch.attr)
			}
			changes = append(changes, cchanges...)
		}
	}

	for _, ch := range changes {
		ch.object.Set(ch.attr, ch.next)
	}
	for _, target := range []*domain.Object{companion, obj} {
		if target == nil {
			continue
		}
		if err := o.catalog.Validate(target); err != nil {
			for i := len(changes) - 1; 0 <= i; i-- {
				changes[i].object.Set(changes[i].attr, changes[i].previous)
			}
			return nil, err
		}
	}

	if 0 < len(changes) {
		store.MarkDirty()
	}
	return &Result{
		Action:  Edited,
		ID:      w.ID(),
		Name:    w.Name(),
		Class:   w.Class(),
		WebIDs:  w.MirroredWebIDs(),
		Changed: changed,
	}, nil
}

// diff lists attributes of obj to rewrite with values, "name" first then parameters in order.
//
// Lists are compared by identity of their members.
func (o *Orchestrator) diff(obj *domain.Object, values map[string]domain.Value) ([]change, error) {
	params, err := o.catalog.Params(obj.Class())
	if err != nil {
		return nil, err
	}
	ret := []change{}
	add := func(attr string, next domain.Value) {
		previous, ok := obj.Get(attr)
		if ok && previous.Equal(next) {
			return
		}
		ret = append(ret, change{object: obj, attr: attr, previous: previous, next: next})
	}

	if v, ok := values["name"]; ok {
		if name, _ := v.(domain.Text); name == "" {
			return nil, domerr.NewValidation("name", "name of %s is required", obj.Class())
		}
		add("name", v)
	}
	for _, p := range params {
		v, ok := values[p.Name]
		if !ok {
			continue
		}
		if err := o.catalog.Check(obj.Class(), p, v); err != nil {
			return nil, err
		}
		add(p.Name, v)
	}
	return ret, nil
}
