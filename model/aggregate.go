package model

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Distributed-computing groups and shares.
const (
	GroupGeneration   = "generation"
	GroupSimulation   = "simulation"
	GroupDigiReco     = "digi_reco"
	ShareReprocessing = "reprocessing"
	ShareAnalysis     = "analysis"
)

// DCShares lists the distributed-computing shares in report order.
var DCShares = []string{GroupGeneration, GroupSimulation, GroupDigiReco, ShareReprocessing, ShareAnalysis}

// Aggregate sums the processing categories and breaks down the work that can
// run on distributed (Tier 1/2) resources, i.e. everything except prompt.
type Aggregate struct {
	Time     YearSeries // all categories, HS06*s
	Required YearSeries // all categories, HS06

	HPCTime     YearSeries // re-processing and simulation
	HPCRequired YearSeries

	DCTime     YearSeries
	DCRequired YearSeries
	Fractions  map[string]YearSeries // share -> fraction of DCTime

	ParticipantTime     YearSeries // us_fraction_T1T2 x DC
	ParticipantRequired YearSeries

	// Degenerate lists years whose distributed total is zero; their
	// fractions are reported as zero.
	Degenerate []int
}

// NewAggregate sums the categories of cpu for every year.
func NewAggregate(p *Parameters, cpu *CPUModel) *Aggregate {
	years := p.Years()
	a := &Aggregate{
		Time:                newYearSeries(years),
		Required:            newYearSeries(years),
		HPCTime:             newYearSeries(years),
		HPCRequired:         newYearSeries(years),
		DCTime:              newYearSeries(years),
		DCRequired:          newYearSeries(years),
		Fractions:           make(map[string]YearSeries, len(DCShares)),
		ParticipantTime:     newYearSeries(years),
		ParticipantRequired: newYearSeries(years),
	}
	for _, share := range DCShares {
		a.Fractions[share] = newYearSeries(years)
	}

	categories := cpu.Categories()
	for _, y := range years {
		times := make([]float64, 0, len(categories))
		rates := make([]float64, 0, len(categories))
		for _, c := range categories {
			times = append(times, c.Time[y])
			rates = append(rates, c.Required[y])
		}
		a.Time[y] = floats.Sum(times)
		a.Required[y] = floats.Sum(rates)

		simTime, simRequired := 0.0, 0.0
		for _, era := range cpu.Eras() {
			simTime += cpu.Simulation[era].Time[y]
			simRequired += cpu.Simulation[era].Required[y]
		}
		a.HPCTime[y] = cpu.Rereco.Time[y] + simTime
		a.HPCRequired[y] = cpu.Rereco.Required[y] + simRequired

		a.DCTime[y] = a.Time[y] - cpu.Prompt.Time[y]
		a.DCRequired[y] = a.Required[y] - cpu.Prompt.Required[y]
		a.ParticipantTime[y] = p.USFractionT1T2 * a.DCTime[y]
		a.ParticipantRequired[y] = p.USFractionT1T2 * a.DCRequired[y]

		shares := map[string]float64{
			ShareReprocessing: cpu.Rereco.Time[y],
			ShareAnalysis:     cpu.Analysis.Time[y],
		}
		for group, tiers := range p.DCGroups {
			for _, era := range cpu.Eras() {
				for _, tier := range tiers {
					if series, ok := cpu.SimulationByTier[era][tier]; ok {
						shares[group] += series[y]
					}
				}
			}
		}
		degenerate := false
		for _, share := range DCShares {
			f, err := Ratio(shares[share], a.DCTime[y])
			if errors.Is(err, ErrDegenerateRatio) {
				degenerate = true
				f = 0
			}
			a.Fractions[share][y] = f
		}
		if degenerate {
			logrus.Warnf("Aggregate: no distributed-computing time in %d, fractions reported as zero", y)
			a.Degenerate = append(a.Degenerate, y)
		}
	}
	return a
}

// HPCFraction returns the HPC-eligible share of the required rate in year.
func (a *Aggregate) HPCFraction(year int) (float64, error) {
	return Ratio(a.HPCRequired[year], a.Required[year])
}
