// Package lifecycle runs create, edit and delete requests against an object graph.
//
// Each request runs to completion against one Store. On error, a creation removes
// what it has committed; callers should discard the Store after any other error.
package lifecycle

import (
	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/forms"
)

// Logger receives diagnostics of pipelines.
//
// gommon's *log.Logger satisfies it.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any) {}
func (nopLogger) Warnf(string, ...any) {}

type Orchestrator struct {
	catalog *catalog.Catalog
	config  *forms.Config
	policy  Policy
	hooks   map[string]Hooks
	logger  Logger
}

type Option func(*Orchestrator) *Orchestrator

// WithPolicy replaces the policy. Without it, every reference blocks deletions.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.policy = p
		return o
	}
}

// WithHooks sets hooks of a class or a base class.
func WithHooks(class string, h Hooks) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.hooks[class] = h
		return o
	}
}

func WithLogger(l Logger) Option {
	return func(o *Orchestrator) *Orchestrator {
		o.logger = l
		return o
	}
}

// New creates an orchestrator of classes in cat, placed as config tells.
func New(cat *catalog.Catalog, config *forms.Config, options ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog: cat,
		config:  config,
		hooks:   map[string]Hooks{},
		logger:  nopLogger{},
	}
	for _, opt := range options {
		o = opt(o)
	}
	return o
}

// hooksFor finds hooks of the nearest class in the lineage.
func (o *Orchestrator) hooksFor(class string) Hooks {
	for _, c := range o.catalog.Lineage(class) {
		if h, ok := o.hooks[c]; ok {
			return h
		}
	}
	return NoopHooks{}
}
