// Package memory is an in-process graph repository.
//
// Documents are kept encoded, so loaded documents never share state with saved ones.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository"
)

type entry struct {
	body     []byte
	revision int64
	saved    time.Time
}

type Provider struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ repository.Provider = &Provider{}

type Option func(*Provider) *Provider

// WithClock replaces the clock stamping saves.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) *Provider {
		p.now = now
		return p
	}
}

func New(options ...Option) *Provider {
	p := &Provider{entries: map[string]entry{}, now: time.Now}
	for _, opt := range options {
		p = opt(p)
	}
	return p
}

func (p *Provider) Open(sessionID string) repository.Interface {
	return &session{provider: p, id: sessionID}
}

func (p *Provider) Expire(ctx context.Context, before time.Time) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	expired := []string{}
	for id, e := range p.entries {
		if e.saved.Before(before) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(p.entries, id)
	}
	return expired, nil
}

type session struct {
	provider *Provider
	id       string
}

func (s *session) Get(ctx context.Context) (*graph.Document, error) {
	s.provider.mu.Lock()
	e, ok := s.provider.entries[s.id]
	s.provider.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return graph.Decode(e.body)
}

func (s *session) Save(ctx context.Context, doc *graph.Document) (int64, error) {
	p := s.provider
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.entries[s.id].revision
	if doc.Revision != current {
		return 0, repository.ErrConflict
	}
	next := current + 1
	body, err := graph.Encode(repository.Stamp(doc, next))
	if err != nil {
		return 0, err
	}
	p.entries[s.id] = entry{body: body, revision: next, saved: p.now()}
	return next, nil
}

func (s *session) HasData(ctx context.Context) (bool, error) {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	_, ok := s.provider.entries[s.id]
	return ok, nil
}

func (s *session) Clear(ctx context.Context) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	delete(s.provider.entries, s.id)
	return nil
}
