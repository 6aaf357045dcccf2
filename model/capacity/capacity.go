// Package capacity projects available processing, disk and tape capacity.
//
// Two growth models exist and are computed side by side:
//   - SimpleModel: a fixed baseline that loses a constant fraction every year
//     and gains a fixed, technology-improved increment.
//   - LedgerModel: a purchase ledger where every purchase is retired exactly
//     lifetime years after it was made.
package capacity

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/hepcomp/resource-model/model/ramp"
)

// Resource names used as keys throughout the capacity tables.
const (
	CPU  = "cpu"
	Disk = "disk"
	Tape = "tape"
)

// Resources lists the resources in report order.
var Resources = []string{CPU, Disk, Tape}

// Series maps a year to an available amount (HS06 for cpu, bytes for storage).
type Series map[int]float64

// Scale returns a copy of s with every value multiplied by f.
func (s Series) Scale(f float64) Series {
	out := make(Series, len(s))
	for y, v := range s {
		out[y] = v * f
	}
	return out
}

// Model projects capacity for the requested years.
type Model interface {
	Project(years []int) (Series, error)
}

var (
	_ Model = (*SimpleModel)(nil)
	_ Model = (*LedgerModel)(nil)
)

// SimpleSpec configures the exponential-improvement model.
type SimpleSpec struct {
	BaseYear       int     `yaml:"base_year" validate:"gt=0"`
	Base           float64 `yaml:"base" validate:"gte=0"`
	RetirementRate float64 `yaml:"retirement_rate" validate:"gte=0,lte=1"`
	Increment      float64 `yaml:"increment" validate:"gte=0"`
	IncrementAfter float64 `yaml:"increment_after" validate:"gte=0"`
	StepYear       int     `yaml:"step_year"`      // 0 = increment never steps up
	ReferenceYear  int     `yaml:"reference_year"` // exponent origin for the improvement factor
}

// DefaultCPUSimple reproduces the "available CPU power" baseline: 1.4 MHS06
// in 2016, 5% retirement, 300 kHS06 bought per year until 2020 and 600 kHS06
// afterwards, improved relative to 2017.
var DefaultCPUSimple = SimpleSpec{
	BaseYear:       2016,
	Base:           1.4e6,
	RetirementRate: 0.05,
	Increment:      300e3,
	IncrementAfter: 600e3,
	StepYear:       2020,
	ReferenceYear:  2017,
}

// SimpleModel retires a fixed fraction of last year's capacity and adds an
// increment compounded by a constant improvement factor.
type SimpleModel struct {
	spec   SimpleSpec
	factor float64
}

// NewSimpleModel creates a SimpleModel with the given yearly improvement factor.
func NewSimpleModel(spec SimpleSpec, factor float64) *SimpleModel {
	return &SimpleModel{spec: spec, factor: factor}
}

func (m *SimpleModel) increment(year int) float64 {
	if m.spec.StepYear > 0 && year >= m.spec.StepYear {
		return m.spec.IncrementAfter
	}
	return m.spec.Increment
}

// Project walks forward from the base year. Years at or before the base year
// report the base value.
func (m *SimpleModel) Project(years []int) (Series, error) {
	out := make(Series, len(years))
	if len(years) == 0 {
		return out, nil
	}
	last := maxYear(years)
	running := map[int]float64{m.spec.BaseYear: m.spec.Base}
	for y := m.spec.BaseYear + 1; y <= last; y++ {
		improvement := math.Pow(m.factor, float64(y-m.spec.ReferenceYear))
		running[y] = running[y-1]*(1-m.spec.RetirementRate) + m.increment(y)*improvement
	}
	for _, y := range years {
		if y <= m.spec.BaseYear {
			out[y] = m.spec.Base
			continue
		}
		out[y] = running[y]
	}
	logrus.Debugf("simple capacity model: base %.4g in %d, %d years projected", m.spec.Base, m.spec.BaseYear, len(out))
	return out, nil
}

// LedgerSpec configures the purchase-ledger model for one resource.
type LedgerSpec struct {
	Year     int
	Start    float64
	Lifetime int
	Delta    ramp.Ramp
}

// LedgerModel reconstructs a purchase history and retires purchases after
// their lifetime.
type LedgerModel struct {
	spec   LedgerSpec
	factor float64
}

// NewLedgerModel creates a LedgerModel with the given yearly improvement factor.
func NewLedgerModel(spec LedgerSpec, factor float64) *LedgerModel {
	return &LedgerModel{spec: spec, factor: factor}
}

// Purchases returns the ledger of capacity added per year up to last,
// including the synthetic equal-size purchases that explain the starting
// capacity.
func (m *LedgerModel) Purchases(last int) map[int]float64 {
	added := make(map[int]float64)
	share := m.spec.Start / float64(m.spec.Lifetime)
	for y := m.spec.Year - m.spec.Lifetime + 1; y <= m.spec.Year; y++ {
		added[y] = share
	}
	for y := m.spec.Year + 1; y <= last; y++ {
		delta, control, err := m.spec.Delta.Step(y)
		if err != nil {
			// no purchase configured yet
			added[y] = 0
			continue
		}
		added[y] = delta * math.Pow(m.factor, float64(y-control))
	}
	return added
}

// Project walks forward from the configured starting year. Requesting a year
// before it is an error.
func (m *LedgerModel) Project(years []int) (Series, error) {
	if m.spec.Lifetime <= 0 {
		return nil, fmt.Errorf("ledger lifetime must be positive, got %d", m.spec.Lifetime)
	}
	out := make(Series, len(years))
	if len(years) == 0 {
		return out, nil
	}
	last := maxYear(years)
	added := m.Purchases(last)
	running := map[int]float64{m.spec.Year: m.spec.Start}
	for y := m.spec.Year + 1; y <= last; y++ {
		retired := added[y-m.spec.Lifetime]
		running[y] = running[y-1] + added[y] - retired
	}
	for _, y := range years {
		v, ok := running[y]
		if !ok {
			return nil, fmt.Errorf("ledger capacity for %d: %w (ledger starts %d)", y, ramp.ErrUndefinedRange, m.spec.Year)
		}
		out[y] = v
	}
	logrus.Debugf("ledger capacity model: start %.4g in %d, lifetime %d", m.spec.Start, m.spec.Year, m.spec.Lifetime)
	return out, nil
}

func maxYear(years []int) int {
	last := years[0]
	for _, y := range years[1:] {
		if y > last {
			last = y
		}
	}
	return last
}
