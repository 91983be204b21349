package lifecycle

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	xe "github.com/opst/footprintweb/pkg/errors"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/units"
)

// UserData is the source of values decoded from payloads.
const UserData = "user data"

// Decode reads attributes of class submitted in payload.
//
// Only submitted attributes are returned. References are resolved in store, seeds
// being materialized on the way. Calculated attributes are read only.
func Decode(store *graph.Store, class string, payload Payload) (map[string]domain.Value, error) {
	params, err := store.Catalog().Params(class)
	if err != nil {
		return nil, err
	}
	for _, attr := range store.Catalog().Calculated(class) {
		if _, ok := payload.Get(class, attr); ok {
			return nil, domerr.NewValidation(attr, "%s of %s is calculated and read only", attr, class)
		}
	}
	values := map[string]domain.Value{}

	if raw, ok := payload.Get(class, "name"); ok {
		values["name"] = domain.Text(strings.TrimSpace(raw.First()))
	}
	for _, p := range params {
		raw, ok := payload.Get(class, p.Name)
		if !ok {
			continue
		}
		v, err := decode(store, p, raw)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		values[p.Name] = v
	}
	return values, nil
}

func decode(store *graph.Store, p domain.Param, raw Raw) (domain.Value, error) {
	switch p.Kind {
	case domain.KindText, domain.Unresolved:
		return domain.Text(raw.First()), nil

	case domain.KindChoice, domain.KindConditionalChoice:
		return domain.Choice(raw.First()), nil

	case domain.KindQuantity, domain.KindDimensionless:
		s := strings.TrimSpace(raw.First())
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, domerr.NewValidation(p.Name, "%q is not a number", s)
		}
		if p.Kind == domain.KindDimensionless {
			return domain.Quantity{Value: v, Source: UserData}, nil
		}
		unit := raw.Unit
		if unit == "" {
			unit = p.Unit
		}
		if _, err := units.Convert(v, unit, p.Unit); err != nil {
			if errors.Is(err, units.ErrUnknownUnit) || errors.Is(err, units.ErrIncompatible) {
				return nil, domerr.NewValidation(p.Name, "%s cannot be in %s", p.Name, unit)
			}
			return nil, xe.Wrap(err)
		}
		return domain.Quantity{Value: v, Unit: unit, Source: UserData}, nil

	case domain.KindObject:
		id := raw.First()
		if id == "" {
			return nil, nil
		}
		w, err := store.GetByID(id)
		if err != nil {
			return nil, err
		}
		return domain.Ref{Object: w.Object()}, nil

	case domain.KindObjectList:
		list := domain.RefList{}
		for _, id := range raw.Values {
			// a multiple selection submits each id, or them joined by ";"
			for _, id := range strings.Split(id, ";") {
				if id = strings.TrimSpace(id); id == "" {
					continue
				}
				w, err := store.GetByID(id)
				if err != nil {
					return nil, err
				}
				if !list.Contains(id) {
					list = append(list, w.Object())
				}
			}
		}
		return list, nil

	case domain.KindTimeseries:
		return decodeTimeseries(p, raw)

	case domain.KindStructured:
		if raw.Object != nil {
			return domain.Structured(raw.Object), nil
		}
		s := strings.TrimSpace(raw.First())
		if s == "" {
			return domain.Structured{}, nil
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, domerr.NewValidation(p.Name, "%s is not a JSON object", p.Name)
		}
		return domain.Structured(m), nil
	}
	return nil, domerr.NewConfiguration("", "parameter %s has no resolvable type", p.Name)
}

func decodeTimeseries(p domain.Param, raw Raw) (domain.Value, error) {
	ts, _ := p.Default.(domain.Timeseries)

	number := func(sub string, dest *float64) error {
		s, ok := raw.Sub[sub]
		if !ok || strings.TrimSpace(s) == "" {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return domerr.NewValidation(p.Name, "%s of %s is not a number: %q", sub, p.Name, s)
		}
		*dest = v
		return nil
	}
	text := func(sub string, dest *string) {
		if s, ok := raw.Sub[sub]; ok && s != "" {
			*dest = s
		}
	}

	if s, ok := raw.Sub["start_date"]; ok && s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, domerr.NewValidation(p.Name, "start date of %s is not a date: %q", p.Name, s)
		}
		ts.StartDate = d
	}
	for sub, dest := range map[string]*float64{
		"duration":        &ts.Duration,
		"initial_volume":  &ts.InitialVolume,
		"net_growth_rate": &ts.NetGrowthRate,
	} {
		if err := number(sub, dest); err != nil {
			return nil, err
		}
	}
	text("duration_unit", &ts.DurationUnit)
	text("initial_volume_timespan", &ts.InitialVolumeTimespan)
	text("net_growth_rate_timespan", &ts.NetGrowthRateTimespan)

	if ts.Duration <= 0 {
		return nil, domerr.NewValidation(p.Name, "duration of %s should be positive", p.Name)
	}
	return ts, nil
}
