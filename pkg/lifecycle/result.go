package lifecycle

import "github.com/opst/footprintweb/pkg/graph"

// actions of Result
const (
	Created              = "created"
	Edited               = "edited"
	Deleted              = "deleted"
	Blocked              = "blocked"
	RemovedFromContainer = "removed_from_container"
)

// Summary identifies an object for callers.
type Summary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Class  string   `json:"class"`
	WebIDs []string `json:"web_ids"`
}

func summarize(w *graph.Wrapper) *Summary {
	return &Summary{ID: w.ID(), Name: w.Name(), Class: w.Class(), WebIDs: w.MirroredWebIDs()}
}

// Result of a lifecycle request.
type Result struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Class  string `json:"class"`

	// WebIDs of renderings to refresh, or to remove on deletion.
	WebIDs []string `json:"web_ids"`

	// Override is the object to surface in place of the created one.
	Override *Summary `json:"override,omitempty"`

	// Blockers are names of what prevents a deletion.
	Blockers []string `json:"blockers,omitempty"`

	// Deleted ids, in the order of removal.
	Deleted []string `json:"deleted,omitempty"`

	// Changed attributes on edition. Companion attributes are "{attribute}.{companion attribute}".
	Changed []string `json:"changed,omitempty"`

	// Updated are ids of containers whose lists are changed.
	Updated []string `json:"updated,omitempty"`
}
