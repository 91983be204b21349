package domain

import (
	"reflect"
	"strconv"
	"time"
)

// Value is an attribute value of an Object.
type Value interface {
	// Equal compares values the way edits detect changes.
	//
	// References are compared by identity, not by content.
	Equal(Value) bool

	String() string
}

// Text is a free text attribute.
type Text string

func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && o == t
}

func (t Text) String() string {
	return string(t)
}

// Choice is a categorical attribute, one of list values of its parameter.
type Choice string

func (c Choice) Equal(other Value) bool {
	o, ok := other.(Choice)
	return ok && o == c
}

func (c Choice) String() string {
	return string(c)
}

// Quantity is a numeric attribute with unit.
//
// Unit is empty for dimensionless values.
type Quantity struct {
	Value float64
	Unit  string

	// Source tells where the value came from ("user data", "hypothesis", ...).
	Source string
}

func (q Quantity) Equal(other Value) bool {
	o, ok := other.(Quantity)
	return ok && o.Value == q.Value && o.Unit == q.Unit
}

func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'f', -1, 64)
	if q.Unit == "" {
		return v
	}
	return v + " " + q.Unit
}

// Ref refers another Object. Object may be nil.
type Ref struct {
	Object *Object
}

func (r Ref) Equal(other Value) bool {
	o, ok := other.(Ref)
	if !ok {
		return false
	}
	return r.ID() == o.ID()
}

// ID of the referred object, or "" when nothing is referred.
func (r Ref) ID() string {
	if r.Object == nil {
		return ""
	}
	return r.Object.ID()
}

func (r Ref) String() string {
	if r.Object == nil {
		return ""
	}
	return r.Object.Name()
}

// RefList is a list of references.
type RefList []*Object

// Equal is true when both lists refer the same objects in the same order.
func (l RefList) Equal(other Value) bool {
	o, ok := other.(RefList)
	if !ok || len(o) != len(l) {
		return false
	}
	for i := range l {
		if l[i].ID() != o[i].ID() {
			return false
		}
	}
	return true
}

func (l RefList) IDs() []string {
	ids := make([]string, len(l))
	for i, o := range l {
		ids[i] = o.ID()
	}
	return ids
}

// Contains reports whether an object with the id is in the list.
func (l RefList) Contains(id string) bool {
	for _, o := range l {
		if o.ID() == id {
			return true
		}
	}
	return false
}

// Without returns a new list without the object with the id.
func (l RefList) Without(id string) RefList {
	ret := make(RefList, 0, len(l))
	for _, o := range l {
		if o.ID() != id {
			ret = append(ret, o)
		}
	}
	return ret
}

func (l RefList) String() string {
	s := ""
	for i, o := range l {
		if i != 0 {
			s += ", "
		}
		s += o.Name()
	}
	return s
}

// Timeseries describes a volume growing over time.
type Timeseries struct {
	StartDate             time.Time
	Duration              float64
	DurationUnit          string
	InitialVolume         float64
	InitialVolumeTimespan string
	NetGrowthRate         float64
	NetGrowthRateTimespan string
}

func (t Timeseries) Equal(other Value) bool {
	o, ok := other.(Timeseries)
	return ok && o.StartDate.Equal(t.StartDate) &&
		o.Duration == t.Duration && o.DurationUnit == t.DurationUnit &&
		o.InitialVolume == t.InitialVolume && o.InitialVolumeTimespan == t.InitialVolumeTimespan &&
		o.NetGrowthRate == t.NetGrowthRate && o.NetGrowthRateTimespan == t.NetGrowthRateTimespan
}

func (t Timeseries) String() string {
	return t.StartDate.Format(time.DateOnly) + " + " +
		strconv.FormatFloat(t.Duration, 'f', -1, 64) + " " + t.DurationUnit
}

// Structured is an opaque structured attribute (a decoded JSON object).
type Structured map[string]any

func (s Structured) Equal(other Value) bool {
	o, ok := other.(Structured)
	return ok && reflect.DeepEqual(map[string]any(s), map[string]any(o))
}

func (s Structured) String() string {
	return "{...}"
}
