// Package graph holds the live object graph of a modeling session.
//
// A Store is built for one request from the persisted Document, mutated by one use
// case, then dumped back. It is not safe for concurrent use.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/utils/maps"
)

// ErrReferenced is wrapped by errors of removing objects still referred by others.
var ErrReferenced = errors.New("object is still referenced")

// ReferencedError reports referrers blocking a removal.
type ReferencedError struct {
	ID string
	By []string
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("%s is referenced by %v", e.ID, e.By)
}

func (e *ReferencedError) Unwrap() error {
	return ErrReferenced
}

// Logger receives diagnostics of a Store.
//
// gommon's *log.Logger and echo.Logger satisfy it.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

type Store struct {
	catalog  *catalog.Catalog
	objects  maps.Map[string, *domain.Object]
	logger   Logger
	dirty    bool
	revision int64
}

type Option func(*Store) *Store

// WithLogger sets a logger receiving auto-registration diagnostics.
func WithLogger(l Logger) Option {
	return func(s *Store) *Store {
		s.logger = l
		return s
	}
}

// New creates an empty store.
func New(cat *catalog.Catalog, options ...Option) *Store {
	s := &Store{
		catalog: cat,
		objects: maps.NewOrdered[string, *domain.Object](),
		logger:  nopLogger{},
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Revision of the document this store was loaded from.
func (s *Store) Revision() int64 {
	return s.revision
}

// Dirty reports whether the store has changed since it is loaded.
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkDirty records an in-place mutation of a member object.
func (s *Store) MarkDirty() {
	s.dirty = true
}

func (s *Store) wrap(o *domain.Object) *Wrapper {
	return &Wrapper{object: o, store: s}
}

// Wrap an object of this store.
func (s *Store) Wrap(o *domain.Object) *Wrapper {
	return s.wrap(o)
}

// Get returns wrappers of members being classOrBase, in insertion order.
func (s *Store) Get(classOrBase string) []*Wrapper {
	ret := []*Wrapper{}
	for _, o := range s.objects.Values() {
		if s.catalog.IsA(o.Class(), classOrBase) {
			ret = append(ret, s.wrap(o))
		}
	}
	return ret
}

// Objects returns all members in insertion order.
func (s *Store) Objects() []*domain.Object {
	return s.objects.Values()
}

// Lookup finds a member. Seeds are not materialized.
func (s *Store) Lookup(id string) (*domain.Object, bool) {
	return s.objects.Get(id)
}

// GetByID finds a member by id.
//
// When id is of a seed which is not a member yet, the seed is materialized and becomes a member.
func (s *Store) GetByID(id string) (*Wrapper, error) {
	if o, ok := s.objects.Get(id); ok {
		return s.wrap(o), nil
	}
	seed, ok := s.catalog.Seed(id)
	if !ok {
		return nil, domerr.NewMissing("object", id)
	}
	o, err := s.catalog.Materialize(seed)
	if err != nil {
		return nil, err
	}
	s.objects.Set(o.ID(), o)
	s.dirty = true
	return s.wrap(o), nil
}

// Peek finds a member by id like GetByID, but a seed which is not a member yet is
// materialized as a detached object. The store is left as it is.
func (s *Store) Peek(id string) (*Wrapper, error) {
	if o, ok := s.objects.Get(id); ok {
		return s.wrap(o), nil
	}
	seed, ok := s.catalog.Seed(id)
	if !ok {
		return nil, domerr.NewMissing("object", id)
	}
	o, err := s.catalog.Materialize(seed)
	if err != nil {
		return nil, err
	}
	return s.wrap(o), nil
}

// Add registers obj and everything reachable from it.
//
// It returns the wrapper of obj and ids registered implicitly (obj excluded), in
// registration order. Adding a member again is a no-op.
func (s *Store) Add(obj *domain.Object) (*Wrapper, []string, error) {
	if known, ok := s.objects.Get(obj.ID()); ok {
		if known != obj {
			return nil, nil, domerr.NewConfiguration(obj.Class(), "id %s is taken by another object", obj.ID())
		}
		return s.wrap(known), []string{}, nil
	}
	if _, err := s.catalog.Type(obj.Class()); err != nil {
		return nil, nil, err
	}

	newcomers := []string{}
	visited := map[string]struct{}{obj.ID(): {}}
	var register func(o *domain.Object) error
	register = func(o *domain.Object) error {
		for _, r := range o.References() {
			t := r.Target
			if _, ok := visited[t.ID()]; ok {
				continue
			}
			visited[t.ID()] = struct{}{}
			if known, ok := s.objects.Get(t.ID()); ok {
				if known != t {
					return domerr.NewConfiguration(
						t.Class(), "%s refers %s which is not the member with the id", o.ID(), t.ID(),
					)
				}
				continue
			}
			if _, err := s.catalog.Type(t.Class()); err != nil {
				return err
			}
			if err := register(t); err != nil {
				return err
			}
			s.logger.Warnf(
				"%s %s (referred by %s.%s) is not in the graph yet. registering it.",
				t.Class(), t.ID(), o.ID(), r.Attribute,
			)
			s.objects.Set(t.ID(), t)
			newcomers = append(newcomers, t.ID())
		}
		return nil
	}
	if err := register(obj); err != nil {
		for _, id := range newcomers {
			s.objects.Delete(id)
		}
		return nil, nil, err
	}

	s.objects.Set(obj.ID(), obj)
	s.dirty = true
	return s.wrap(obj), newcomers, nil
}

// Remove a member. Members still referred by others are not removed.
func (s *Store) Remove(id string) error {
	if _, ok := s.objects.Get(id); !ok {
		return domerr.NewMissing("object", id)
	}
	if refs := s.Containers(id); len(refs) != 0 {
		by := make([]string, len(refs))
		for i, r := range refs {
			by[i] = r.ID()
		}
		return &ReferencedError{ID: id, By: by}
	}
	s.objects.Delete(id)
	s.dirty = true
	return nil
}

// Containment is a reference to an object from a member.
type Containment struct {
	Container *domain.Object
	Attribute string
	List      bool
}

// Referrers lists references to id from members, in insertion order of the members.
func (s *Store) Referrers(id string) []Containment {
	ret := []Containment{}
	for _, o := range s.objects.Values() {
		for _, r := range o.References() {
			if r.Target.ID() == id {
				ret = append(ret, Containment{Container: o, Attribute: r.Attribute, List: r.List})
			}
		}
	}
	return ret
}

// Containers lists members referring id, each once.
func (s *Store) Containers(id string) []*domain.Object {
	return distinct(s.Referrers(id), func(Containment) bool { return true })
}

// ListContainers lists members holding id in one of their reference lists, each once.
func (s *Store) ListContainers(id string) []*domain.Object {
	return distinct(s.Referrers(id), func(c Containment) bool { return c.List })
}

func distinct(cs []Containment, pred func(Containment) bool) []*domain.Object {
	ret := []*domain.Object{}
	for _, c := range cs {
		if !pred(c) || slices.Contains(ret, c.Container) {
			continue
		}
		ret = append(ret, c.Container)
	}
	return ret
}

// CountOf counts members of exactly class.
func (s *Store) CountOf(class string) int {
	n := 0
	for _, o := range s.objects.Values() {
		if o.Class() == class {
			n += 1
		}
	}
	return n
}

// Entry is an object which can be selected: a member or a seed.
type Entry struct {
	ID    string
	Name  string
	Class string
}

// Inventory lists members being classOrBase, followed by seeds not materialized yet.
func (s *Store) Inventory(classOrBase string) []Entry {
	ret := []Entry{}
	for _, w := range s.Get(classOrBase) {
		ret = append(ret, Entry{ID: w.ID(), Name: w.Name(), Class: w.Class()})
	}
	for _, seed := range s.catalog.Seeds(classOrBase) {
		if _, ok := s.objects.Get(seed.ID); ok {
			continue
		}
		ret = append(ret, Entry{ID: seed.ID, Name: seed.Name, Class: seed.Class})
	}
	return ret
}
