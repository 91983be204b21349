// Package session binds requests to the object graph of a user session.
package session

import (
	"context"

	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository"
)

// Scope is one unit of work on a session graph: load, mutate, commit.
type Scope struct {
	repo  repository.Interface
	store *graph.Store
}

// Open loads the graph of repo. A session without graph starts with an empty one.
func Open(ctx context.Context, repo repository.Interface, cat *catalog.Catalog, options ...graph.Option) (*Scope, error) {
	doc, err := repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	store, err := graph.Load(cat, doc, options...)
	if err != nil {
		return nil, err
	}
	return &Scope{repo: repo, store: store}, nil
}

func (s *Scope) Store() *graph.Store {
	return s.store
}

// Commit saves the graph when it is changed.
//
// It returns repository.ErrConflict when another scope has committed after this
// one is opened. The scope should not be used after Commit.
func (s *Scope) Commit(ctx context.Context) error {
	if !s.store.Dirty() {
		return nil
	}
	_, err := s.repo.Save(ctx, s.store.Document())
	return err
}

// Run opens a scope, calls f with its graph and commits when f succeeds.
//
// An error of f discards every change f made.
func Run[T any](ctx context.Context, repo repository.Interface, cat *catalog.Catalog, f func(*graph.Store) (T, error), options ...graph.Option) (T, error) {
	s, err := Open(ctx, repo, cat, options...)
	if err != nil {
		return *new(T), err
	}
	ret, err := f(s.store)
	if err != nil {
		return *new(T), err
	}
	if err := s.Commit(ctx); err != nil {
		return *new(T), err
	}
	return ret, nil
}
