package lifecycle

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	xe "github.com/opst/footprintweb/pkg/errors"
	"github.com/opst/footprintweb/pkg/forms"
)

// ParsedPrefix prefixes keys of nested companion payloads: "_parsed_{class}".
const ParsedPrefix = "_parsed_"

// Payload is a submitted form.
//
// It is either flat, keyed by field ids ("{class}_{attribute}"), or parsed, keyed by
// attribute names with companions nested under "_parsed_{class}".
type Payload struct {
	flat   map[string][]string
	parsed map[string]any
}

// Raw is a submitted value of one attribute before decoding.
type Raw struct {
	Values []string

	// Unit paired with a numeric value. Empty when not submitted.
	Unit string

	// Sub values of timeseries, by sub field name.
	Sub map[string]string

	// Object is a submitted JSON object as it is. Only parsed payloads have it.
	Object map[string]any
}

// First value or "".
func (r Raw) First() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// FromForm makes a flat payload. url.Values can be passed as it is.
func FromForm(form map[string][]string) Payload {
	if form == nil {
		form = map[string][]string{}
	}
	return Payload{flat: form}
}

// FromMap makes a parsed payload.
func FromMap(m map[string]any) Payload {
	if m == nil {
		m = map[string]any{}
	}
	return Payload{parsed: m}
}

// FromJSON decodes a JSON object as a parsed payload.
func FromJSON(body []byte) (Payload, error) {
	m := map[string]any{}
	if err := json.Unmarshal(body, &m); err != nil {
		return Payload{}, xe.Wrap(err)
	}
	return FromMap(m), nil
}

func (p Payload) Parsed() bool {
	return p.parsed != nil
}

func (p Payload) single(key string) string {
	if p.parsed != nil {
		return scalar(p.parsed[key])
	}
	if vs := p.flat[key]; 0 < len(vs) {
		return vs[0]
	}
	return ""
}

// Type chosen by the type selector. Empty when not submitted.
func (p Payload) Type() string {
	return p.single(forms.TypeSelectorID)
}

// Parent chosen in a parent selection.
func (p Payload) Parent() string {
	return p.single(forms.ParentFieldID)
}

// Intermediate chosen in a parent selection. It may be a direct call.
func (p Payload) Intermediate() string {
	return p.single(forms.IntermediateFieldID)
}

// Nested object chosen in a nested parent selection.
func (p Payload) Nested() string {
	return p.single(forms.NestedFieldID)
}

// Companion finds the payload of the companion of class.
//
// Flat payloads carry companion fields next to the primary ones.
func (p Payload) Companion(class string) (Payload, bool) {
	if p.parsed == nil {
		prefix := class + "_"
		for k := range p.flat {
			if strings.HasPrefix(k, prefix) {
				return p, true
			}
		}
		return Payload{}, false
	}
	nested, ok := p.parsed[ParsedPrefix+class].(map[string]any)
	if !ok {
		return Payload{}, false
	}
	return FromMap(nested), true
}

// Get finds the raw value of attr of class.
func (p Payload) Get(class string, attr string) (Raw, bool) {
	if p.parsed != nil {
		return p.getParsed(attr)
	}
	return p.getFlat(class + "_" + attr)
}

func (p Payload) getFlat(key string) (Raw, bool) {
	r := Raw{Sub: map[string]string{}}
	vs, found := p.flat[key]
	r.Values = vs
	if u := p.flat[key+"_unit"]; 0 < len(u) {
		r.Unit = u[0]
	}
	for k, v := range p.flat {
		sub, ok := strings.CutPrefix(k, key+"__")
		if !ok || len(v) == 0 {
			continue
		}
		r.Sub[sub] = v[0]
		found = true
	}
	return r, found
}

func (p Payload) getParsed(attr string) (Raw, bool) {
	v, found := p.parsed[attr]
	if !found {
		return Raw{}, false
	}
	r := Raw{Sub: map[string]string{}, Unit: scalar(p.parsed[attr+"_unit"])}
	switch v := v.(type) {
	case []any:
		for _, e := range v {
			r.Values = append(r.Values, scalar(e))
		}
	case map[string]any:
		// {"value": 1, "unit": "GB"} or timeseries sub values
		r.Object = v
		if q, ok := v["value"]; ok {
			r.Values = []string{scalar(q)}
			if u, ok := v["unit"]; ok {
				r.Unit = scalar(u)
			}
			break
		}
		for k, e := range v {
			r.Sub[k] = scalar(e)
		}
	case nil:
	default:
		r.Values = []string{scalar(v)}
	}
	return r, true
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
