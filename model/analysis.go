package model

import "github.com/sirupsen/logrus"

// AnalysisModel estimates analysis processing for one year. Estimate runs
// after prompt, re-processing and simulation are known for that year.
type AnalysisModel interface {
	Estimate(year int) (time, required float64)
}

// legacyShare is the analysis share of everything else in the legacy model.
const legacyShare = 0.75

// LegacyAnalysis sizes analysis as a fixed share of all other activity, with
// a hand-tuned ramp for the years in which analysed datasets accumulate.
type LegacyAnalysis struct {
	cpu *CPUModel
}

// Estimate returns 0.75 times the other categories' time, spread over a full
// year.
func (a *LegacyAnalysis) Estimate(year int) (float64, float64) {
	m := a.cpu
	t := m.Prompt.Time[year] + m.Rereco.Time[year]
	for _, era := range m.events.Eras() {
		t += m.Simulation[era].Time[year]
	}
	t *= legacyShare
	return t, t / SecondsPerYear
}

// Adjust applies the accumulating-analysis overrides.
func (a *LegacyAnalysis) Adjust(act *Activity) {
	accumulatingAnalysisPass(act, a.cpu.params)
}

// accumulatingAnalysisSteps scale a year's analysis time from an anchor year:
// each data-taking year adds one more year of analysed data, and the flat
// years cover the shutdown.
var accumulatingAnalysisSteps = []struct {
	year, anchor int
	factor       float64
}{
	{2019, 2018, 4.0 / 3.0},
	{2020, 2019, 1},
	{2021, 2019, 1},
	{2022, 2021, 5.0 / 4.0},
	{2023, 2022, 6.0 / 5.0},
	{2024, 2023, 7.0 / 6.0},
}

// accumulatingAnalysisPass overrides analysis time for 2019-2024 from the
// preceding anchor years. Overridden years are spread over a full year.
// Steps whose anchor lies outside the horizon are skipped.
func accumulatingAnalysisPass(act *Activity, p *Parameters) {
	for _, s := range accumulatingAnalysisSteps {
		if !p.InHorizon(s.year) || !p.InHorizon(s.anchor) {
			continue
		}
		act.Time[s.year] = s.factor * act.Time[s.anchor]
		act.Required[s.year] = act.Time[s.year] / SecondsPerYear
		logrus.Debugf("Analysis: %d overridden from %d x %.4f", s.year, s.anchor, s.factor)
	}
}

// DatasetAnalysis derives analysis cost from the produced years being
// analysed in each year (AnalysisSet) and how often their events are read.
type DatasetAnalysis struct {
	cpu *CPUModel
}

// Estimate returns the per-event analysis cost times the events read, plus an
// optional share of reconstruction and simulation time.
func (a *DatasetAnalysis) Estimate(year int) (float64, float64) {
	m := a.cpu
	p := m.params

	var dataEvents, mcEvents float64
	for _, produced := range p.AnalysisSet.At(year) {
		dataEvents += m.events.Events(produced, KindData)
		for _, era := range m.events.Eras() {
			mcEvents += m.events.Events(produced, MCKind(era))
		}
	}

	perEvent := p.AnalysisCPUPerEvent.StepOr(year, 0)
	readsData := p.AnalysisReadsPerYearData.StepOr(year, 0)
	readsMC := p.AnalysisReadsPerYearMC.StepOr(year, 0)

	t := perEvent * (readsData*dataEvents + readsMC*mcEvents)
	if p.AnalysisCPUScaledByReco > 0 {
		processing := m.Prompt.Time[year] + m.Rereco.Time[year]
		for _, era := range m.events.Eras() {
			processing += m.Simulation[era].Time[year]
		}
		t += p.AnalysisCPUScaledByReco * processing
	}
	return t, t / SecondsPerYear
}
