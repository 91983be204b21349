package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-json"
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	xe "github.com/opst/footprintweb/pkg/errors"
)

// FormatVersion is the version of documents made by Store.Document.
const FormatVersion = "1.1.0"

// documents in these versions can be loaded.
const readableFormats = "^1.0.0"

var ErrIncompatibleDocument = errors.New("incompatible document")

// Document is the persisted form of a Store (the "graph dict"): class -> id -> object.
type Document struct {
	FormatVersion string `json:"format_version"`

	// Revision is stamped by repositories on save.
	Revision int64 `json:"revision"`

	// Order is the insertion order of ids.
	Order []string `json:"order,omitempty"`

	Objects map[string]map[string]ObjectDoc `json:"objects"`
}

type ObjectDoc struct {
	Attributes map[string]ValueDoc `json:"attributes"`
}

// ValueDoc is a tagged domain.Value.
type ValueDoc struct {
	Kind       string         `json:"kind"`
	Text       string         `json:"text,omitempty"`
	Value      *float64       `json:"value,omitempty"`
	Unit       string         `json:"unit,omitempty"`
	Source     string         `json:"source,omitempty"`
	Ref        string         `json:"ref,omitempty"`
	Refs       []string       `json:"refs,omitempty"`
	Timeseries *TimeseriesDoc `json:"timeseries,omitempty"`
	Structured map[string]any `json:"structured,omitempty"`
}

type TimeseriesDoc struct {
	StartDate             string  `json:"start_date"`
	Duration              float64 `json:"duration"`
	DurationUnit          string  `json:"duration_unit"`
	InitialVolume         float64 `json:"initial_volume"`
	InitialVolumeTimespan string  `json:"initial_volume_timespan"`
	NetGrowthRate         float64 `json:"net_growth_rate"`
	NetGrowthRateTimespan string  `json:"net_growth_rate_timespan"`
}

const (
	kindText       = "text"
	kindChoice     = "choice"
	kindQuantity   = "quantity"
	kindRef        = "ref"
	kindList       = "list"
	kindTimeseries = "timeseries"
	kindStructured = "structured"
)

// Encode a document as JSON.
func Encode(doc *Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	return b, xe.Wrap(err)
}

// Decode a JSON document. It does not check the format version; Load does.
func Decode(body []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, xe.Wrap(err)
	}
	return doc, nil
}

// CheckFormat tells whether documents in version can be loaded.
func CheckFormat(version string) error {
	constraint, err := semver.NewConstraint(readableFormats)
	if err != nil {
		return xe.Wrap(err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: format_version %q: %w", ErrIncompatibleDocument, version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: format_version %s is not %s", ErrIncompatibleDocument, version, readableFormats)
	}
	return nil
}

// Document dumps the store.
func (s *Store) Document() *Document {
	doc := &Document{
		FormatVersion: FormatVersion,
		Revision:      s.revision,
		Order:         s.objects.Keys(),
		Objects:       map[string]map[string]ObjectDoc{},
	}
	for _, o := range s.objects.Values() {
		byID, ok := doc.Objects[o.Class()]
		if !ok {
			byID = map[string]ObjectDoc{}
			doc.Objects[o.Class()] = byID
		}
		od := ObjectDoc{Attributes: map[string]ValueDoc{}}
		for _, attr := range o.Attributes() {
			v, _ := o.Get(attr)
			od.Attributes[attr] = valueDoc(v)
		}
		byID[o.ID()] = od
	}
	return doc
}

func valueDoc(v domain.Value) ValueDoc {
	switch v := v.(type) {
	case domain.Text:
		return ValueDoc{Kind: kindText, Text: string(v)}
	case domain.Choice:
		return ValueDoc{Kind: kindChoice, Text: string(v)}
	case domain.Quantity:
		n := v.Value
		return ValueDoc{Kind: kindQuantity, Value: &n, Unit: v.Unit, Source: v.Source}
	case domain.Ref:
		return ValueDoc{Kind: kindRef, Ref: v.ID()}
	case domain.RefList:
		return ValueDoc{Kind: kindList, Refs: v.IDs()}
	case domain.Timeseries:
		return ValueDoc{Kind: kindTimeseries, Timeseries: &TimeseriesDoc{
			StartDate:             v.StartDate.Format(time.DateOnly),
			Duration:              v.Duration,
			DurationUnit:          v.DurationUnit,
			InitialVolume:         v.InitialVolume,
			InitialVolumeTimespan: v.InitialVolumeTimespan,
			NetGrowthRate:         v.NetGrowthRate,
			NetGrowthRateTimespan: v.NetGrowthRateTimespan,
		}}
	case domain.Structured:
		return ValueDoc{Kind: kindStructured, Structured: v}
	default:
		return ValueDoc{Kind: kindText, Text: v.String()}
	}
}

// Load builds a store from a document. A nil document makes an empty store.
//
// References to seeds which are not in the document materialize them.
func Load(cat *catalog.Catalog, doc *Document, options ...Option) (*Store, error) {
	s := New(cat, options...)
	if doc == nil {
		return s, nil
	}
	if err := CheckFormat(doc.FormatVersion); err != nil {
		return nil, err
	}
	s.revision = doc.Revision

	objects := map[string]*domain.Object{}
	docs := map[string]ObjectDoc{}
	for class, byID := range doc.Objects {
		if _, err := cat.Type(class); err != nil {
			return nil, xe.Wrapf(err, "document")
		}
		for id, od := range byID {
			if _, ok := objects[id]; ok {
				return nil, domerr.NewConfiguration(class, "document: duplicated id %s", id)
			}
			objects[id] = domain.Restore(class, id)
			docs[id] = od
		}
	}

	order := slices.Clone(doc.Order)
	order = slices.DeleteFunc(order, func(id string) bool {
		_, ok := objects[id]
		return !ok
	})
	rest := []string{}
	for id := range objects {
		if !slices.Contains(order, id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	seeds := []string{}
	resolve := func(id string) (*domain.Object, error) {
		if o, ok := objects[id]; ok {
			return o, nil
		}
		seed, ok := cat.Seed(id)
		if !ok {
			return nil, domerr.NewConfiguration("", "document: dangling reference to %s", id)
		}
		o, err := cat.Materialize(seed)
		if err != nil {
			return nil, err
		}
		objects[id] = o
		seeds = append(seeds, id)
		return o, nil
	}

	for _, id := range order {
		o := objects[id]
		od := docs[id]
		for _, attr := range attributeOrder(cat, o.Class(), od) {
			v, err := value(od.Attributes[attr], resolve)
			if err != nil {
				return nil, xe.Wrapf(err, "document: %s.%s", id, attr)
			}
			o.Set(attr, v)
		}
	}

	for _, id := range append(seeds, order...) {
		s.objects.Set(id, objects[id])
	}
	return s, nil
}

// attributeOrder: "name", then parameters of the class, then others in lexical order.
func attributeOrder(cat *catalog.Catalog, class string, od ObjectDoc) []string {
	ret := []string{}
	if _, ok := od.Attributes["name"]; ok {
		ret = append(ret, "name")
	}
	params, _ := cat.Params(class)
	for _, p := range params {
		if _, ok := od.Attributes[p.Name]; ok && !slices.Contains(ret, p.Name) {
			ret = append(ret, p.Name)
		}
	}
	rest := []string{}
	for attr := range od.Attributes {
		if !slices.Contains(ret, attr) {
			rest = append(rest, attr)
		}
	}
	sort.Strings(rest)
	return append(ret, rest...)
}

func value(vd ValueDoc, resolve func(string) (*domain.Object, error)) (domain.Value, error) {
	switch vd.Kind {
	case kindText:
		return domain.Text(vd.Text), nil
	case kindChoice:
		return domain.Choice(vd.Text), nil
	case kindQuantity:
		q := domain.Quantity{Unit: vd.Unit, Source: vd.Source}
		if vd.Value != nil {
			q.Value = *vd.Value
		}
		return q, nil
	case kindRef:
		if vd.Ref == "" {
			return domain.Ref{}, nil
		}
		o, err := resolve(vd.Ref)
		if err != nil {
			return nil, err
		}
		return domain.Ref{Object: o}, nil
	case kindList:
		l := make(domain.RefList, 0, len(vd.Refs))
		for _, id := range vd.Refs {
			o, err := resolve(id)
			if err != nil {
				return nil, err
			}
			l = append(l, o)
		}
		return l, nil
	case kindTimeseries:
		if vd.Timeseries == nil {
			return nil, fmt.Errorf("timeseries without body")
		}
		ts := vd.Timeseries
		start, err := time.Parse(time.DateOnly, ts.StartDate)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		return domain.Timeseries{
			StartDate:             start,
			Duration:              ts.Duration,
			DurationUnit:          ts.DurationUnit,
			InitialVolume:         ts.InitialVolume,
			InitialVolumeTimespan: ts.InitialVolumeTimespan,
			NetGrowthRate:         ts.NetGrowthRate,
			NetGrowthRateTimespan: ts.NetGrowthRateTimespan,
		}, nil
	case kindStructured:
		if vd.Structured == nil {
			return domain.Structured{}, nil
		}
		return domain.Structured(vd.Structured), nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", vd.Kind)
	}
}
