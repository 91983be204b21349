// Package units converts submitted numeric values between units of the same dimension.
//
// SI-prefixed units (kB, GB, kW, kWh, kgCO2e, ...) are resolved with
// k8s.io/apimachinery's resource.Quantity suffix table. Time units are calendar
// based and handled with a fixed table.
package units

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	xe "github.com/opst/footprintweb/pkg/errors"
	"k8s.io/apimachinery/pkg/api/resource"
)

var (
	ErrUnknownUnit  = errors.New("unknown unit")
	ErrIncompatible = errors.New("incompatible units")
)

// prefixes offered for SI based units, in ascending order.
var prefixes = []string{"m", "", "k", "M", "G", "T", "P"}

// SI base symbols, longest first so that "Wh" wins over "W".
var siBases = []string{"gCO2e", "bit/s", "Wh", "B", "W", "g"}

// seconds per time unit.
var timeUnits = map[string]float64{
	"s":     1,
	"min":   60,
	"hour":  3600,
	"day":   86400,
	"week":  7 * 86400,
	"month": 30.4375 * 86400,
	"year":  365.25 * 86400,
}

var timeOrder = []string{"s", "min", "hour", "day", "week", "month", "year"}

// Unit is a parsed unit symbol.
type Unit struct {
	Symbol string

	// Dimension is the base symbol for SI units or "time".
	Dimension string

	prefix string
}

// Dimensionless reports whether the unit carries no dimension ("" or "dimensionless").
func (u Unit) Dimensionless() bool {
	return u.Dimension == ""
}

// Parse resolves a unit symbol.
func Parse(symbol string) (Unit, error) {
	s := strings.TrimSpace(symbol)
	if s == "" || s == "dimensionless" {
		return Unit{Symbol: s}, nil
	}
	if _, ok := timeUnits[s]; ok {
		return Unit{Symbol: s, Dimension: "time"}, nil
	}
	for _, base := range siBases {
		p, ok := strings.CutSuffix(s, base)
		if !ok {
			continue
		}
		if !slices.Contains(prefixes, p) {
			break
		}
		return Unit{Symbol: s, Dimension: base, prefix: p}, nil
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
}

// magnitude returns value expressed in the base unit of u.
func (u Unit) magnitude(value float64) (float64, error) {
	if u.Dimension == "time" {
		return value * timeUnits[u.Symbol], nil
	}
	q, err := resource.ParseQuantity(strconv.FormatFloat(value, 'f', -1, 64) + u.prefix)
	if err != nil {
		return 0, xe.Wrapf(err, "%v %s", value, u.Symbol)
	}
	return q.AsApproximateFloat64(), nil
}

func (u Unit) factor() float64 {
	if u.Dimension == "time" {
		return timeUnits[u.Symbol]
	}
	q := resource.MustParse("1" + u.prefix)
	return q.AsApproximateFloat64()
}

// Convert value in unit from to unit to.
func Convert(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	f, err := Parse(from)
	if err != nil {
		return 0, err
	}
	t, err := Parse(to)
	if err != nil {
		return 0, err
	}
	if f.Dimension != t.Dimension {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatible, from, to)
	}
	if f.Dimensionless() {
		return value, nil
	}

	m, err := f.magnitude(value)
	if err != nil {
		return 0, err
	}
	return m / t.factor(), nil
}

// Compatible lists the units a value in symbol may be entered with, symbol included.
//
// It returns nil for dimensionless or unknown units.
func Compatible(symbol string) []string {
	u, err := Parse(symbol)
	if err != nil || u.Dimensionless() {
		return nil
	}
	if u.Dimension == "time" {
		return slices.Clone(timeOrder)
	}
	ret := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "m" && u.Dimension != "g" && u.Dimension != "gCO2e" && u.Dimension != "W" {
			continue
		}
		ret = append(ret, p+u.Dimension)
	}
	return ret
}
