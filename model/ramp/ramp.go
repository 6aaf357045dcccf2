// Package ramp resolves sparse year-keyed control points into per-year values.
//
// A Ramp supports two readings of the same control points: Step holds the
// last defined value until the next control year, and Interpolate draws a
// straight line between the two bracketing control years. Compound multiplies
// interpolated yearly factors across a closed year range.
//
// This package has no dependency on the rest of the model; every engine calls
// into it.
package ramp

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrUndefinedRange is returned when a year precedes every control point of a ramp.
var ErrUndefinedRange = errors.New("year precedes ramp control points")

// Ramp maps control years to values. In configuration documents it is an
// object keyed by year strings, e.g. {"2017": 1.0, "2026": 2.5}. A bare
// number is accepted as a constant ramp.
type Ramp map[int]float64

// Constant returns a ramp that yields v for every year.
func Constant(v float64) Ramp {
	return Ramp{0: v}
}

// Years returns the control years in ascending order.
func (r Ramp) Years() []int {
	years := make([]int, 0, len(r))
	for y := range r {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Step returns the value at the greatest control year <= year, along with that
// control year.
func (r Ramp) Step(year int) (float64, int, error) {
	years := r.Years()
	if len(years) == 0 {
		return 0, 0, fmt.Errorf("%w: empty ramp", ErrUndefinedRange)
	}
	if year < years[0] {
		return 0, 0, fmt.Errorf("%w: year %d, first control year %d", ErrUndefinedRange, year, years[0])
	}
	// index of the first control year strictly after year
	i := sort.SearchInts(years, year+1)
	control := years[i-1]
	return r[control], control, nil
}

// StepOr returns the step value at year, or def when the year precedes every
// control point.
func (r Ramp) StepOr(year int, def float64) float64 {
	v, _, err := r.Step(year)
	if err != nil {
		return def
	}
	return v
}

// Interpolate returns the exact value at a control year and a linear blend of
// the two bracketing control points otherwise. Years outside the defined range
// are clamped to the first or last control point. An empty ramp yields 0.
func (r Ramp) Interpolate(year int) float64 {
	if v, ok := r[year]; ok {
		return v
	}
	years := r.Years()
	if len(years) == 0 {
		return 0
	}
	first, last := years[0], years[len(years)-1]
	if year < first {
		return r[first]
	}
	if year > last {
		return r[last]
	}
	i := sort.SearchInts(years, year)
	past, future := years[i-1], years[i]
	return r[past] + float64(year-past)*(r[future]-r[past])/float64(future-past)
}

// Compound multiplies the interpolated factor of every year in [from, to].
// An empty range yields 1.
func Compound(r Ramp, from, to int) float64 {
	factor := 1.0
	for y := from; y <= to; y++ {
		factor *= r.Interpolate(y)
	}
	return factor
}

// UnmarshalYAML decodes either a year-keyed mapping or a scalar constant.
func (r *Ramp) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("line %d: ramp value %q is not numeric", value.Line, value.Value)
		}
		*r = Constant(v)
		return nil
	case yaml.MappingNode:
		out := make(Ramp, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			year, err := strconv.Atoi(k.Value)
			if err != nil {
				return fmt.Errorf("line %d: ramp key %q is not a year", k.Line, k.Value)
			}
			var f float64
			if err := v.Decode(&f); err != nil {
				return fmt.Errorf("line %d: ramp value for %d is not numeric", v.Line, year)
			}
			out[year] = f
		}
		*r = out
		return nil
	default:
		return fmt.Errorf("line %d: ramp must be a mapping of year to value or a number", value.Line)
	}
}
