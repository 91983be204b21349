package lifecycle

import (
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/forms"
)

// serverHooks resizes the companion storage of a new server when it cannot hold
// the base storage need of the server.
type serverHooks struct {
	NoopHooks
}

func (serverHooks) HandleCreationError(c *Creation, err domerr.RecoverableDomainError) (bool, error) {
	lack, ok := err.(*domerr.InsufficientCapacityError)
	if !ok || c.Companion == nil || lack.Object != c.Companion.ID() {
		return false, nil
	}
	c.Logger.Warnf(
		"%s: %s of %s is resized from %v to %v %s",
		c.Class, lack.Attribute, c.Companion.Name(), lack.Available, lack.Required, lack.Unit,
	)
	c.Companion.Set(lack.Attribute, domain.Quantity{Value: lack.Required, Unit: lack.Unit, Source: "resized"})
	return true, nil
}

// externalAPIHooks generates the server backing a new external API, and surfaces it.
type externalAPIHooks struct {
	NoopHooks
	catalog *catalog.Catalog
}

func (h externalAPIHooks) PreAddToSystem(c *Creation) error {
	if c.Object.Ref("server") != nil {
		return nil
	}
	name := c.Object.Name()
	storage, err := h.catalog.Construct("Storage", map[string]domain.Value{
		"name": domain.Text(name + " storage"),
	})
	if err != nil {
		return err
	}
	server, err := h.catalog.Construct("ExternalAPIServer", map[string]domain.Value{
		"name":    domain.Text(name + " server"),
		"storage": domain.Ref{Object: storage},
	})
	if err != nil {
		return err
	}
	c.Object.Set("server", domain.Ref{Object: server})
	c.Generated = append(c.Generated, storage, server)
	c.Override = server
	return nil
}

// NewBuiltin creates an orchestrator of the built-in catalog with its hooks and policy.
//
// options are applied after the built-in ones.
func NewBuiltin(cat *catalog.Catalog, options ...Option) *Orchestrator {
	builtin := []Option{
		WithPolicy(BuiltinPolicy()),
		WithHooks("ServerBase", serverHooks{}),
		WithHooks("ExternalAPI", externalAPIHooks{catalog: cat}),
	}
	return New(cat, forms.BuiltinConfig(), append(builtin, options...)...)
}
