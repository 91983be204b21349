package lifecycle

import (
	"slices"

	"github.com/opst/footprintweb/pkg/domain/catalog"
)

// Referenced tells what happens to objects referring a deleted object.
type Referenced string

const (
	// Block the deletion while referred.
	Block Referenced = "block"

	// Cascade the deletion to referrers.
	Cascade Referenced = "cascade"
)

// Policy is the deletion and linking policy of classes.
//
// Entries are by class or base class. The nearest one in the lineage applies.
type Policy struct {
	// CascadeEligible classes are deleted with the last object referring them.
	CascadeEligible []string

	// OnReferencedDelete tells what happens to single references to a deleted
	// object of the class. Unlisted classes block.
	OnReferencedDelete map[string]Referenced

	// SkipParentLink classes are not linked into the list of their parent on creation.
	SkipParentLink []string
}

// BuiltinPolicy is the policy of the built-in catalog.
func BuiltinPolicy() Policy {
	return Policy{
		CascadeEligible: []string{"Storage", "ExternalAPIServer"},
		OnReferencedDelete: map[string]Referenced{
			"ServerBase":        Cascade,
			"ServiceBase":       Cascade,
			"EdgeComponentBase": Cascade,
			"UsageJourney":      Block,
			"Device":            Block,
			"Network":           Block,
			"Country":           Block,
			"Storage":           Block,
			"EdgeDevice":        Block,
		},
		SkipParentLink: []string{},
	}
}

func inLineage(cat *catalog.Catalog, class string, classes []string) bool {
	return slices.ContainsFunc(classes, func(c string) bool { return cat.IsA(class, c) })
}

func (p Policy) cascadeEligible(cat *catalog.Catalog, class string) bool {
	return inLineage(cat, class, p.CascadeEligible)
}

func (p Policy) skipParentLink(cat *catalog.Catalog, class string) bool {
	return inLineage(cat, class, p.SkipParentLink)
}

func (p Policy) onReferencedDelete(cat *catalog.Catalog, class string) Referenced {
	for _, c := range cat.Lineage(class) {
		if r, ok := p.OnReferencedDelete[c]; ok {
			return r
		}
	}
	return Block
}
