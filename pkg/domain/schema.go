package domain

import "slices"

// Kind is the category of a constructor parameter.
type Kind int

const (
	// Unresolved kind: the parameter declares no type that forms can handle.
	Unresolved Kind = iota
	KindText
	KindQuantity
	KindDimensionless
	KindChoice
	KindConditionalChoice
	KindObject
	KindObjectList
	KindTimeseries
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindQuantity:
		return "quantity"
	case KindDimensionless:
		return "dimensionless"
	case KindChoice:
		return "choice"
	case KindConditionalChoice:
		return "conditional choice"
	case KindObject:
		return "object"
	case KindObjectList:
		return "object list"
	case KindTimeseries:
		return "timeseries"
	case KindStructured:
		return "structured"
	default:
		return "unresolved"
	}
}

// Numeric reports whether the kind is entered as a number.
func (k Kind) Numeric() bool {
	return k == KindQuantity || k == KindDimensionless
}

// Param is one constructor parameter of a Type.
type Param struct {
	Name string
	Kind Kind

	// Class of referred objects, for KindObject and KindObjectList.
	// It may be a base class.
	Class string

	// Default is used when no value is given. Nil means "required".
	Default Value

	// default unit of numeric values.
	Unit string

	// Optional parameters may be left empty even without Default.
	Optional bool

	Advanced bool

	// ListValues are choices of KindChoice parameters.
	ListValues []string

	// DependsOn names the parameter controlling choices of a KindConditionalChoice parameter.
	DependsOn string

	// ConditionalValues maps a value of DependsOn to choices.
	ConditionalValues map[string][]string
}

// Required reports whether a value should be given on construction.
func (p Param) Required() bool {
	return p.Default == nil && !p.Optional
}

// Type is the schema of a registered class. It replaces constructor introspection.
type Type struct {
	Name string

	// Base class name. Empty for root classes.
	Base string

	// Abstract types group concrete ones and cannot be constructed.
	Abstract bool

	// Params in declaration order. "name" is implicit and always first.
	Params []Param

	// NegativeAllowed lists attributes which may hold negative numbers.
	NegativeAllowed []string

	// Calculated lists attributes computed by the modeling library. They are read only.
	Calculated []string

	// Seeded types have reference instances in the seed catalog.
	Seeded bool

	// Validate checks a constructed object. It may be nil.
	Validate func(*Object) error
}

// Param looks up a parameter by name.
func (t *Type) Param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (t *Type) CanBeNegative(attr string) bool {
	return slices.Contains(t.NegativeAllowed, attr)
}

