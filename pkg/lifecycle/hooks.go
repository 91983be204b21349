package lifecycle

import (
	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/graph"
)

// Creation is the state of one create request, shared with hooks.
type Creation struct {
	Store   *graph.Store
	Logger  Logger
	Request CreateRequest

	// Class resolved from the request and the type selector. Empty before type resolution.
	Class string

	// Values to construct the object with. Hooks may rewrite them before construction.
	Values map[string]domain.Value

	// Companion constructed for the object, if any.
	Companion *domain.Object

	// Generated objects are committed before Object, in order.
	Generated []*domain.Object

	// Object constructed. Nil before construction.
	Object *domain.Object

	// Parent to link Object into after commit, with the list attribute.
	Parent         *domain.Object
	ParentListAttr string

	// Override is surfaced to the caller in place of Object when set.
	Override *domain.Object
}

// Edition is the state of one edit request, shared with hooks.
type Edition struct {
	Store   *graph.Store
	Logger  Logger
	Request EditRequest
	Object  *domain.Object

	// Values submitted. Hooks may rewrite them before they are applied.
	Values map[string]domain.Value
}

// Deletion is the state of one delete request, shared with hooks.
type Deletion struct {
	Store   *graph.Store
	Logger  Logger
	Request DeleteRequest
	Object  *domain.Object
}

// Hooks customize pipelines of a class.
//
// Embed NoopHooks to implement only some of them.
type Hooks interface {
	// PreCreate runs first, before anything is read from the payload.
	PreCreate(c *Creation) error

	// PrepareInput runs after the payload is decoded into c.Values.
	PrepareInput(c *Creation) error

	// HandleCreationError may recover from a recoverable error of construction.
	// When it returns true, construction is retried once with c.Values.
	HandleCreationError(c *Creation, err domerr.RecoverableDomainError) (bool, error)

	// PreAddToSystem runs after construction and before commit.
	PreAddToSystem(c *Creation) error

	// PostCreate runs after commit and parent linking.
	PostCreate(c *Creation) error

	// PreEdit runs before values are applied.
	PreEdit(e *Edition) error

	// CanDelete returns names of what prevents the deletion, if any.
	CanDelete(d *Deletion) ([]string, error)

	// PreDelete runs before anything is removed.
	PreDelete(d *Deletion) error

	// AfterChildRemoval runs after d.Object is unlinked from attr of container.
	AfterChildRemoval(d *Deletion, container *domain.Object, attr string) error
}

// NoopHooks does nothing and recovers nothing.
type NoopHooks struct{}

var _ Hooks = NoopHooks{}

func (NoopHooks) PreCreate(*Creation) error { return nil }

func (NoopHooks) PrepareInput(*Creation) error { return nil }

func (NoopHooks) HandleCreationError(*Creation, domerr.RecoverableDomainError) (bool, error) {
	return false, nil
}

func (NoopHooks) PreAddToSystem(*Creation) error { return nil }

func (NoopHooks) PostCreate(*Creation) error { return nil }

func (NoopHooks) PreEdit(*Edition) error { return nil }

func (NoopHooks) CanDelete(*Deletion) ([]string, error) { return nil, nil }

func (NoopHooks) PreDelete(*Deletion) error { return nil }

func (NoopHooks) AfterChildRemoval(*Deletion, *domain.Object, string) error { return nil }
