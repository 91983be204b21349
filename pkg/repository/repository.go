// Package repository persists object graphs per session.
//
// A graph is saved as a whole document. The document carries a revision; a save
// based on a revision which is not the latest one is rejected with ErrConflict.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opst/footprintweb/pkg/graph"
)

// ErrConflict is returned when the graph is saved by another request after it is loaded.
var ErrConflict = errors.New("graph is updated by another request")

// Interface is a graph repository bound to one session.
type Interface interface {
	// Get loads the saved document.
	//
	// It returns nil without error when nothing is saved.
	Get(ctx context.Context) (*graph.Document, error)

	// Save persists doc when doc.Revision is the latest revision, zero for the first save.
	//
	// It returns the new revision, stamped on the saved document. Otherwise it
	// returns ErrConflict and nothing is changed.
	Save(ctx context.Context, doc *graph.Document) (int64, error)

	// HasData reports whether a document is saved.
	HasData(ctx context.Context) (bool, error)

	// Clear removes the saved document. Clearing nothing is not an error.
	Clear(ctx context.Context) error
}

// Provider opens repositories per session.
type Provider interface {
	Open(sessionID string) Interface

	// Expire removes documents not saved since before.
	//
	// It returns session ids of removed documents.
	Expire(ctx context.Context, before time.Time) ([]string, error)
}

// Stamp returns a copy of doc carrying revision.
func Stamp(doc *graph.Document, revision int64) *graph.Document {
	stamped := *doc
	stamped.Revision = revision
	return &stamped
}
