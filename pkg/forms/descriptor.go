// Package forms generates form descriptions from class schemas.
//
// A form is regenerated on every open: nothing here mutates the graph.
package forms

import (
	"slices"

	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/utils/maps"
)

// Logger receives diagnostics of a Builder.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// Builder builds forms of one catalog under one Config.
type Builder struct {
	catalog *catalog.Catalog
	config  *Config
	logger  Logger
}

type BuilderOption func(*Builder) *Builder

func WithLogger(l Logger) BuilderOption {
	return func(b *Builder) *Builder {
		b.logger = l
		return b
	}
}

func NewBuilder(cat *catalog.Catalog, config *Config, options ...BuilderOption) *Builder {
	b := &Builder{catalog: cat, config: config, logger: nopLogger{}}
	for _, opt := range options {
		b = opt(b)
	}
	return b
}

func (b *Builder) Config() *Config {
	return b.config
}

var nameParam = domain.Param{Name: "name", Kind: domain.KindText}

// Signature returns the parameters of class shown in forms, "name" first.
//
// Parameters excluded by the TypeConfig of the class (or its bases) are skipped.
// A parameter of unresolved kind is a ConfigurationError, unless TextFallback is
// configured; then it is read as text.
func (b *Builder) Signature(class string) (maps.Map[string, domain.Param], error) {
	params, err := b.catalog.Params(class)
	if err != nil {
		return nil, err
	}
	excluded := b.config.TypeConfig(b.catalog, class).Excluded

	sig := maps.NewOrdered[string, domain.Param]()
	sig.Set(nameParam.Name, nameParam)
	for _, p := range params {
		if slices.Contains(excluded, p.Name) {
			continue
		}
		if p.Kind == domain.Unresolved {
			if !b.config.TextFallback {
				return nil, domerr.NewConfiguration(class, "parameter %s has no resolvable type", p.Name)
			}
			b.logger.Warnf("%s.%s has no resolvable type. reading it as text.", class, p.Name)
			p.Kind = domain.KindText
		}
		sig.Set(p.Name, p)
	}
	return sig, nil
}
