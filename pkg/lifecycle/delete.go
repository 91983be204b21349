package lifecycle

import (
	"slices"
	"strings"

	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/graph"
	xslices "github.com/opst/footprintweb/pkg/utils/slices"
)

type DeleteRequest struct {
	ID string

	// FromContainerID, when set, only unlinks the object from lists of the container.
	FromContainerID string
}

// Delete removes an object, or unlinks it from one container.
//
// Objects referring it are deleted with it when the policy of its class cascades;
// otherwise they block the deletion, and nothing is changed. Cascade eligible
// objects referred only by deleted ones are deleted after them.
func (o *Orchestrator) Delete(store *graph.Store, req DeleteRequest) (*Result, error) {
	w, err := store.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	d := &Deletion{Store: store, Logger: o.logger, Request: req, Object: w.Object()}
	result := &Result{
		ID:     w.ID(),
		Name:   w.Name(),
		Class:  w.Class(),
		WebIDs: w.MirroredWebIDs(),
	}

	if req.FromContainerID != "" {
		return o.unlinkFrom(d, result)
	}

	plan := o.cascade(store, d.Object)
	blockers, err := o.blockers(d, plan)
	if err != nil {
		return nil, err
	}
	if 0 < len(blockers) {
		result.Action = Blocked
		result.Blockers = blockers
		return result, nil
	}

	if err := o.deletePlan(d, plan, result); err != nil {
		return nil, err
	}
	result.Action = Deleted
	return result, nil
}

func (o *Orchestrator) unlinkFrom(d *Deletion, result *Result) (*Result, error) {
	container, err := d.Store.GetByID(d.Request.FromContainerID)
	if err != nil {
		return nil, err
	}
	attrs := []string{}
	for _, r := range d.Store.Referrers(d.Object.ID()) {
		if r.List && r.Container == container.Object() && !slices.Contains(attrs, r.Attribute) {
			attrs = append(attrs, r.Attribute)
		}
	}
	if len(attrs) == 0 {
		return nil, domerr.NewValidation("", "%s is not in %s", d.Object.Name(), container.Name())
	}

	// renderings under the container go away
	under := container.MirroredWebIDs()
	result.WebIDs = xslices.Filter(result.WebIDs, func(id string) bool {
		return slices.ContainsFunc(under, func(prefix string) bool { return strings.HasPrefix(id, prefix+"_") })
	})
	for _, attr := range attrs {
		if err := o.unlink(d, container.Object(), attr); err != nil {
			return nil, err
		}
	}
	d.Store.MarkDirty()
	result.Action = RemovedFromContainer
	result.Updated = []string{container.ID()}
	return result, nil
}

func (o *Orchestrator) unlink(d *Deletion, container *domain.Object, attr string) error {
	container.Set(attr, container.List(attr).Without(d.Object.ID()))
	return o.hooksFor(d.Object.Class()).AfterChildRemoval(d, container, attr)
}

// cascade collects obj and objects deleted with it, in discovery order.
func (o *Orchestrator) cascade(store *graph.Store, obj *domain.Object) []*domain.Object {
	plan := []*domain.Object{obj}
	for i := 0; i < len(plan); i++ {
		m := plan[i]
		if o.policy.onReferencedDelete(o.catalog, m.Class()) != Cascade {
			continue
		}
		for _, r := range store.Referrers(m.ID()) {
			if r.List || slices.Contains(plan, r.Container) {
				continue
			}
			plan = append(plan, r.Container)
		}
	}
	return plan
}

// blockers names single-reference referrers outside plan, and what hooks tell.
func (o *Orchestrator) blockers(d *Deletion, plan []*domain.Object) ([]string, error) {
	names := []string{}
	for _, m := range plan {
		for _, r := range d.Store.Referrers(m.ID()) {
			if r.List || slices.Contains(plan, r.Container) || slices.Contains(names, r.Container.Name()) {
				continue
			}
			names = append(names, r.Container.Name())
		}
	}
	for _, m := range plan {
		md := &Deletion{Store: d.Store, Logger: d.Logger, Request: d.Request, Object: m}
		by, err := o.hooksFor(m.Class()).CanDelete(md)
		if err != nil {
			return nil, err
		}
		for _, b := range by {
			if !slices.Contains(names, b) {
				names = append(names, b)
			}
		}
	}
	return names, nil
}

func (o *Orchestrator) deletePlan(d *Deletion, plan []*domain.Object, result *Result) error {
	store := d.Store

	// unlink from lists of survivors
	for _, m := range plan {
		md := &Deletion{Store: store, Logger: d.Logger, Request: d.Request, Object: m}
		for _, r := range store.Referrers(m.ID()) {
			if !r.List || slices.Contains(plan, r.Container) {
				continue
			}
			if err := o.unlink(md, r.Container, r.Attribute); err != nil {
				return err
			}
			if !slices.Contains(result.Updated, r.Container.ID()) {
				result.Updated = append(result.Updated, r.Container.ID())
			}
		}
	}

	owned := []*domain.Object{}
	for _, m := range plan {
		md := &Deletion{Store: store, Logger: d.Logger, Request: d.Request, Object: m}
		if err := o.hooksFor(m.Class()).PreDelete(md); err != nil {
			return err
		}
		for _, r := range m.References() {
			t := r.Target
			if r.List || slices.Contains(plan, t) || slices.Contains(owned, t) {
				continue
			}
			if o.policy.cascadeEligible(o.catalog, t.Class()) {
				owned = append(owned, t)
			}
		}
	}

	// referrers first
	pending := slices.Clone(plan)
	for 0 < len(pending) {
		i := slices.IndexFunc(pending, func(m *domain.Object) bool {
			return len(store.Containers(m.ID())) == 0
		})
		if i < 0 {
			return domerr.NewConfiguration(pending[0].Class(), "%s is in a reference cycle", pending[0].ID())
		}
		m := pending[i]
		if err := store.Remove(m.ID()); err != nil {
			return err
		}
		result.Deleted = append(result.Deleted, m.ID())
		pending = slices.Delete(pending, i, i+1)
	}

	for _, t := range owned {
		if _, ok := store.Lookup(t.ID()); !ok || 0 < len(store.Containers(t.ID())) {
			continue
		}
		od := &Deletion{Store: store, Logger: d.Logger, Request: DeleteRequest{ID: t.ID()}, Object: t}
		sub := o.cascade(store, t)
		blockers, err := o.blockers(od, sub)
		if err != nil {
			return err
		}
		if 0 < len(blockers) {
			o.logger.Warnf("%s is kept: referred by %v", t.ID(), blockers)
			continue
		}
		if err := o.deletePlan(od, sub, result); err != nil {
			return err
		}
	}
	store.MarkDirty()
	return nil
}
