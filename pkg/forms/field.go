package forms

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	xe "github.com/opst/footprintweb/pkg/errors"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/units"
)

// input types
const (
	InputStr            = "str"
	InputTextarea       = "textarea"
	InputNumber         = "input"
	InputSelectObject   = "select_object"
	InputSelectMultiple = "select_multiple"
	InputSelectStr      = "select_str_input"
	InputSelectDepend   = "select_dependent"
	InputTimeseries     = "timeseries"
	InputSelectType     = "select_type"
)

// TypeSelectorID is the field id of the class selector of multi-candidate forms.
const TypeSelectorID = "type_object_available"

// Option of select fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input.
type Field struct {
	// ID is "{class}_{attribute}", also used as the payload key.
	ID        string `json:"id"`
	Attribute string `json:"attribute"`
	Label     string `json:"label"`
	InputType string `json:"input_type"`

	// Value is the current or default value: a string, or a float64 for numbers.
	Value any `json:"value,omitempty"`

	Unit          string   `json:"unit,omitempty"`
	Units         []string `json:"units,omitempty"`
	Step          float64  `json:"step,omitempty"`
	CanBeNegative bool     `json:"can_be_negative,omitempty"`
	Source        string   `json:"source,omitempty"`

	Options    []Option `json:"options,omitempty"`
	Selected   []Option `json:"selected,omitempty"`
	Unselected []Option `json:"unselected,omitempty"`

	// Dynamic fields get options from a DynamicEntry.
	Dynamic   bool    `json:"dynamic,omitempty"`
	Advanced  bool    `json:"advanced,omitempty"`
	SubFields []Field `json:"sub_fields,omitempty"`
}

// DynamicEntry rewires options of a field when another field changes.
//
// It is built once per form and never modified.
type DynamicEntry struct {
	fieldID     string
	controlling string
	values      []string
	options     map[string][]Option
}

func newDynamicEntry(fieldID string, controlling string) *DynamicEntry {
	return &DynamicEntry{fieldID: fieldID, controlling: controlling, options: map[string][]Option{}}
}

// add is used only while the entry is built.
func (d *DynamicEntry) add(value string, opts []Option) {
	if _, ok := d.options[value]; !ok {
		d.values = append(d.values, value)
	}
	d.options[value] = opts
}

func (d *DynamicEntry) FieldID() string {
	return d.fieldID
}

func (d *DynamicEntry) ControllingFieldID() string {
	return d.controlling
}

// Values of the controlling field known by this entry, in insertion order.
func (d *DynamicEntry) Values() []string {
	return slices.Clone(d.values)
}

// Options for a value of the controlling field.
func (d *DynamicEntry) Options(value string) []Option {
	return slices.Clone(d.options[value])
}

func (d *DynamicEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FieldID            string              `json:"field_id"`
		ControllingFieldID string              `json:"controlling_field_id"`
		Options            map[string][]Option `json:"options"`
	}{FieldID: d.fieldID, ControllingFieldID: d.controlling, Options: d.options})
}

func fieldID(class string, attr string) string {
	return class + "_" + attr
}

func (b *Builder) attributeLabel(attr string) string {
	if l, ok := b.config.AttributeLabels[attr]; ok {
		return l
	}
	s := strings.ReplaceAll(attr, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func entryOptions(es []graph.Entry) []Option {
	opts := make([]Option, len(es))
	for i, e := range es {
		opts[i] = Option{Value: e.ID, Label: e.Name}
	}
	return opts
}

func choiceOptions(values []string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v, Label: v}
	}
	return opts
}

// Field synthesizes the field of param p of class.
//
// current is the current value on edition or the default on creation; it may be nil.
// For conditional choices, it also returns the DynamicEntry wiring the field.
func (b *Builder) Field(class string, p domain.Param, current domain.Value, store *graph.Store) (Field, *DynamicEntry, error) {
	f := Field{
		ID:        fieldID(class, p.Name),
		Attribute: p.Name,
		Label:     b.attributeLabel(p.Name),
		Advanced:  p.Advanced,
	}

	switch p.Kind {
	case domain.KindObjectList:
		f.InputType = InputSelectMultiple
		selected, _ := current.(domain.RefList)
		f.Selected = []Option{}
		for _, o := range selected {
			f.Selected = append(f.Selected, Option{Value: o.ID(), Label: o.Name()})
		}
		f.Unselected = []Option{}
		for _, e := range store.Inventory(p.Class) {
			if !selected.Contains(e.ID) {
				f.Unselected = append(f.Unselected, Option{Value: e.ID, Label: e.Name})
			}
		}

	case domain.KindText:
		f.InputType = InputStr
		if current != nil {
			f.Value = current.String()
		}

	case domain.KindStructured:
		f.InputType = InputTextarea
		s, _ := current.(domain.Structured)
		if s == nil {
			s = domain.Structured{}
		}
		text, err := json.Marshal(s)
		if err != nil {
			return Field{}, nil, xe.Wrap(err)
		}
		f.Value = string(text)

	case domain.KindObject:
		f.InputType = InputSelectObject
		f.Options = entryOptions(store.Inventory(p.Class))
		if r, ok := current.(domain.Ref); ok && r.Object != nil {
			f.Value = r.ID()
			f.Selected = []Option{{Value: r.ID(), Label: r.Object.Name()}}
			if !slices.ContainsFunc(f.Options, func(o Option) bool { return o.Value == r.ID() }) {
				f.Options = append([]Option{f.Selected[0]}, f.Options...)
			}
		} else if 0 < len(f.Options) {
			f.Value = f.Options[0].Value
			f.Selected = []Option{f.Options[0]}
		} else {
			return Field{}, nil, domerr.NewConfiguration(
				class, "%s has neither value nor candidate %s. it should be excluded from forms", p.Name, p.Class,
			)
		}

	case domain.KindQuantity, domain.KindDimensionless:
		f.InputType = InputNumber
		q, _ := current.(domain.Quantity)
		if current == nil {
			q = domain.Quantity{Unit: p.Unit}
		}
		rounded := math.Round(q.Value*100) / 100
		f.Value = rounded
		f.Step = 0.01
		if rounded == math.Trunc(rounded) {
			f.Step = 1
		}
		f.CanBeNegative = b.catalog.CanBeNegative(class, p.Name)
		f.Source = q.Source
		if p.Kind == domain.KindQuantity {
			f.Unit = q.Unit
			f.Units = units.Compatible(q.Unit)
		}

	case domain.KindChoice:
		f.InputType = InputSelectStr
		f.Options = choiceOptions(p.ListValues)
		if current != nil {
			f.Value = current.String()
		}

	case domain.KindConditionalChoice:
		f.InputType = InputSelectDepend
		f.Dynamic = true
		if current != nil {
			f.Value = current.String()
		}
		entry := newDynamicEntry(f.ID, fieldID(class, p.DependsOn))
		controllers := []string{}
		if dp, ok := b.catalog.Param(class, p.DependsOn); ok && dp.Kind == domain.KindChoice {
			controllers = dp.ListValues
		}
		for _, k := range sortedKeys(p.ConditionalValues, controllers) {
			entry.add(k, choiceOptions(p.ConditionalValues[k]))
		}
		return f, entry, nil

	case domain.KindTimeseries:
		f.InputType = InputTimeseries
		ts, _ := current.(domain.Timeseries)
		f.SubFields = timeseriesFields(f.ID, ts)

	default:
		return Field{}, nil, domerr.NewConfiguration(class, "parameter %s has no resolvable type", p.Name)
	}

	return f, nil, nil
}

// sortedKeys: keys in the order of preferred, then the rest in lexical order.
func sortedKeys(m map[string][]string, preferred []string) []string {
	ret := []string{}
	for _, k := range preferred {
		if _, ok := m[k]; ok {
			ret = append(ret, k)
		}
	}
	rest := []string{}
	for k := range m {
		if !slices.Contains(ret, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(ret, rest...)
}

var timespans = []string{"day", "week", "month", "year"}

func timeseriesFields(id string, ts domain.Timeseries) []Field {
	start := ""
	if !ts.StartDate.IsZero() {
		start = ts.StartDate.Format(time.DateOnly)
	}
	number := func(sub string, label string, v float64) Field {
		return Field{ID: id + "__" + sub, Attribute: sub, Label: label, InputType: InputNumber, Value: v, Step: 1}
	}
	span := func(sub string, label string, v string) Field {
		return Field{ID: id + "__" + sub, Attribute: sub, Label: label, InputType: InputSelectStr, Value: v, Options: choiceOptions(timespans)}
	}
	return []Field{
		{ID: id + "__start_date", Attribute: "start_date", Label: "Start date", InputType: InputStr, Value: start},
		number("duration", "Duration", ts.Duration),
		span("duration_unit", "Duration unit", ts.DurationUnit),
		number("initial_volume", "Initial volume", ts.InitialVolume),
		span("initial_volume_timespan", "Initial volume timespan", ts.InitialVolumeTimespan),
		number("net_growth_rate", "Net growth rate (%)", ts.NetGrowthRate),
		span("net_growth_rate_timespan", "Net growth rate timespan", ts.NetGrowthRateTimespan),
	}
}
