package graph

import "github.com/opst/footprintweb/pkg/domain"

// Wrapper presents one object of a Store.
//
// It holds no domain state. Reads go to the wrapped object, and the only state it
// owns is the graph it belongs to and the list container it is rendered under.
type Wrapper struct {
	object    *domain.Object
	store     *Store
	container *Wrapper
}

func (w *Wrapper) Object() *domain.Object {
	return w.object
}

func (w *Wrapper) ID() string {
	return w.object.ID()
}

func (w *Wrapper) Name() string {
	return w.object.Name()
}

func (w *Wrapper) Class() string {
	return w.object.Class()
}

func (w *Wrapper) Get(attr string) (domain.Value, bool) {
	return w.object.Get(attr)
}

func (w *Wrapper) Store() *Store {
	return w.store
}

func (w *Wrapper) SetStore(s *Store) {
	w.store = s
}

// ListContainer is the wrapper of the container this wrapper is rendered under, or nil.
func (w *Wrapper) ListContainer() *Wrapper {
	return w.container
}

func (w *Wrapper) SetListContainer(c *Wrapper) {
	w.container = c
}

// WebID identifies a rendering of the object.
//
// It is the object id, prefixed with the WebID of the list container when there is.
func (w *Wrapper) WebID() string {
	if w.container == nil {
		return w.ID()
	}
	return w.container.WebID() + "_" + w.ID()
}
