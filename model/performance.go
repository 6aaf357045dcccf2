package model

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/hepcomp/resource-model/model/ramp"
)

// Performance holds per-event cost and size for one (year, tier, origin, era).
// Either figure may be absent, in which case it contributes zero.
type Performance struct {
	CPUPerEvent  float64 // HS06*s per event, after software improvement
	SizePerEvent float64 // bytes per event
	HasCPU       bool
	HasSize      bool
}

// CPU returns the per-event cost or ErrNotApplicable.
func (p Performance) CPU() (float64, error) {
	if !p.HasCPU {
		return 0, ErrNotApplicable
	}
	return p.CPUPerEvent, nil
}

// Size returns the per-event size or ErrNotApplicable.
func (p Performance) Size() (float64, error) {
	if !p.HasSize {
		return 0, ErrNotApplicable
	}
	return p.SizePerEvent, nil
}

// PerformanceModel resolves per-event costs and sizes.
type PerformanceModel struct {
	params *Parameters
}

// NewPerformanceModel creates a PerformanceModel.
func NewPerformanceModel(p *Parameters) *PerformanceModel {
	return &PerformanceModel{params: p}
}

// Kind resolves the detector kind used for table lookups. An empty era means
// the processing year itself. Kinds with their own software ramp pass through;
// the rest collapse onto the current or future era by the threshold year.
func (m *PerformanceModel) Kind(year int, era string) string {
	kind := era
	if kind == "" {
		kind = strconv.Itoa(year)
	}
	if _, ok := m.params.ImprovementFactors.SoftwareByKind[kind]; ok {
		return kind
	}
	k, err := strconv.Atoi(kind)
	if err != nil {
		return kind
	}
	if k >= m.params.Eras.FutureThreshold {
		return m.params.Eras.Future
	}
	return m.params.Eras.Current
}

// Performance returns per-event cost and size for a tier produced in year.
// origin is OriginData or OriginMC; era is the simulation era or "" for data.
func (m *PerformanceModel) Performance(year int, tier, origin, era string) Performance {
	kind := m.Kind(year, era)
	kindYear, err := strconv.Atoi(kind)
	if err != nil {
		logrus.Debugf("Performance: kind %q is not a year", kind)
		return Performance{}
	}

	var perf Performance
	if sizes, ok := m.params.TierSizes[tier]; ok {
		if v, _, err := sizes.Step(kindYear); err == nil {
			perf.SizePerEvent, perf.HasSize = v, true
		}
	}

	costs, ok := m.params.CPUTime[origin][tier]
	if !ok {
		return perf
	}
	cost, _, err := costs.Step(kindYear)
	if err != nil {
		return perf
	}
	software, ok := m.params.ImprovementFactors.SoftwareByKind[kind]
	if !ok {
		logrus.Debugf("Performance: no software improvement ramp for kind %s", kind)
		return perf
	}
	improvement := ramp.Compound(software, m.params.StartYear, year)
	if improvement == 0 {
		return perf
	}
	perf.CPUPerEvent, perf.HasCPU = cost/improvement, true
	return perf
}

// CPUPerEvent returns the per-event cost or wraps ErrNotApplicable.
func (m *PerformanceModel) CPUPerEvent(year int, tier, origin, era string) (float64, error) {
	v, err := m.Performance(year, tier, origin, era).CPU()
	if err != nil {
		return 0, fmt.Errorf("cpu for %s/%s kind %s in %d: %w", origin, tier, m.Kind(year, era), year, err)
	}
	return v, nil
}

// SizePerEvent returns the per-event size or wraps ErrNotApplicable.
func (m *PerformanceModel) SizePerEvent(year int, tier, origin, era string) (float64, error) {
	v, err := m.Performance(year, tier, origin, era).Size()
	if err != nil {
		return 0, fmt.Errorf("size for %s/%s kind %s in %d: %w", origin, tier, m.Kind(year, era), year, err)
	}
	return v, nil
}

// RecoCost is the data reconstruction cost per event in year, zero if absent.
func (m *PerformanceModel) RecoCost(year int) float64 {
	return m.Performance(year, m.params.RecoTier, OriginData, "").CPUPerEvent
}

// SimCost returns the simulation workflow cost per event for an era in year,
// summed over the workflow tiers, along with the per-tier breakdown.
func (m *PerformanceModel) SimCost(year int, era string) (float64, map[string]float64) {
	perTier := make(map[string]float64, len(m.params.SimWorkflow))
	total := 0.0
	for _, tier := range m.params.SimWorkflow {
		c := m.Performance(year, tier, OriginMC, era).CPUPerEvent
		perTier[tier] += c
		total += c
	}
	return total, perTier
}
