package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/opst/footprintweb/pkg/utils/maps"
)

// Object is an instance of a registered type.
//
// Values are keyed by parameter name. The name of an object is its "name" attribute.
type Object struct {
	id    string
	class string
	attrs maps.Map[string, Value]
}

// NewObject creates an object with a new id derived from name.
func NewObject(class string, name string) *Object {
	o := Restore(class, NewID(name))
	o.Set("name", Text(name))
	return o
}

// Restore creates an empty object with a known id.
func Restore(class string, id string) *Object {
	return &Object{id: id, class: class, attrs: maps.NewOrdered[string, Value]()}
}

// NewID generates an opaque id, "id-<6 hex>-<name>".
func NewID(name string) string {
	u := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "id-" + u[:6] + "-" + escape(name)
}

func escape(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '-'
	}, name)
}

func (o *Object) ID() string {
	if o == nil {
		return ""
	}
	return o.id
}

func (o *Object) Class() string {
	return o.class
}

func (o *Object) Name() string {
	if o == nil {
		return ""
	}
	if v, ok := o.attrs.Get("name"); ok {
		return v.String()
	}
	return o.id
}

func (o *Object) Get(attr string) (Value, bool) {
	return o.attrs.Get(attr)
}

// Set an attribute value. Setting nil removes the attribute.
func (o *Object) Set(attr string, v Value) {
	if v == nil {
		o.attrs.Delete(attr)
		return
	}
	o.attrs.Set(attr, v)
}

// Attributes lists attribute names in the order they were first set.
func (o *Object) Attributes() []string {
	return o.attrs.Keys()
}

// Ref returns the object referred by attr, or nil.
func (o *Object) Ref(attr string) *Object {
	v, ok := o.attrs.Get(attr)
	if !ok {
		return nil
	}
	if r, ok := v.(Ref); ok {
		return r.Object
	}
	return nil
}

// List returns the reference list held in attr, or nil.
func (o *Object) List(attr string) RefList {
	v, ok := o.attrs.Get(attr)
	if !ok {
		return nil
	}
	if l, ok := v.(RefList); ok {
		return l
	}
	return nil
}

// Quantity returns the numeric value held in attr.
func (o *Object) Quantity(attr string) (Quantity, bool) {
	v, ok := o.attrs.Get(attr)
	if !ok {
		return Quantity{}, false
	}
	q, ok := v.(Quantity)
	return q, ok
}

// Reference is one outgoing reference of an object.
type Reference struct {
	Attribute string
	Target    *Object

	// List is true when the reference is a member of a RefList.
	List bool
}

// References lists direct references, in attribute order.
func (o *Object) References() []Reference {
	refs := []Reference{}
	for attr, v := range o.attrs.Iter() {
		switch v := v.(type) {
		case Ref:
			if v.Object != nil {
				refs = append(refs, Reference{Attribute: attr, Target: v.Object})
			}
		case RefList:
			for _, t := range v {
				refs = append(refs, Reference{Attribute: attr, Target: t, List: true})
			}
		}
	}
	return refs
}
