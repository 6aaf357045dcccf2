package model

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// YearSeries holds one value per horizon year.
type YearSeries map[int]float64

func newYearSeries(years []int) YearSeries {
	s := make(YearSeries, len(years))
	for _, y := range years {
		s[y] = 0
	}
	return s
}

// Activity pairs consumed processing time (HS06*s) with the required
// processing rate (HS06) for one category.
type Activity struct {
	Time     YearSeries
	Required YearSeries
}

func newActivity(years []int) Activity {
	return Activity{Time: newYearSeries(years), Required: newYearSeries(years)}
}

// CPUModel computes processing time and rate per year and category.
// Categories are prompt reconstruction, re-processing, simulation of each
// era and analysis.
type CPUModel struct {
	params   *Parameters
	calendar Calendar
	events   *EventsModel
	perf     *PerformanceModel
	years    []int

	recoCost      YearSeries                            // data reco HS06*s/event
	simCost       map[string]YearSeries                 // era -> workflow HS06*s/event
	simCostByTier map[string]map[int]map[string]float64 // era -> year -> tier -> HS06*s/event

	Prompt           Activity
	Rereco           Activity
	Simulation       map[string]Activity              // era -> activity
	SimulationByTier map[string]map[string]YearSeries // era -> tier -> time
	Analysis         Activity

	analysis AnalysisModel
}

// NewCPUModel runs every processing pass in dependency order.
func NewCPUModel(p *Parameters, cal Calendar, events *EventsModel, perf *PerformanceModel) *CPUModel {
	years := p.Years()
	m := &CPUModel{
		params:           p,
		calendar:         cal,
		events:           events,
		perf:             perf,
		years:            years,
		recoCost:         newYearSeries(years),
		simCost:          make(map[string]YearSeries),
		simCostByTier:    make(map[string]map[int]map[string]float64),
		Prompt:           newActivity(years),
		Rereco:           newActivity(years),
		Simulation:       make(map[string]Activity),
		SimulationByTier: make(map[string]map[string]YearSeries),
		Analysis:         newActivity(years),
	}
	if p.DatasetAnalysis() {
		m.analysis = &DatasetAnalysis{cpu: m}
	} else {
		m.analysis = &LegacyAnalysis{cpu: m}
	}

	m.performancePass()
	m.promptPass()
	m.rerecoPass()
	m.simulationPass()
	m.analysisPass()
	m.recoveryPass()
	logrus.Debugf("CPU: %d years, %d simulation eras, analysis %T", len(years), len(m.Simulation), m.analysis)
	return m
}

// Eras returns the simulated eras in ascending order.
func (m *CPUModel) Eras() []string {
	return m.events.Eras()
}

// AnalysisModel returns the analysis strategy in use.
func (m *CPUModel) AnalysisModel() AnalysisModel {
	return m.analysis
}

func (m *CPUModel) performancePass() {
	for _, y := range m.years {
		m.recoCost[y] = m.perf.RecoCost(y)
	}
	for _, era := range m.events.Eras() {
		cost := newYearSeries(m.years)
		byTier := make(map[int]map[string]float64, len(m.years))
		for _, y := range m.years {
			cost[y], byTier[y] = m.perf.SimCost(y, era)
		}
		m.simCost[era] = cost
		m.simCostByTier[era] = byTier
	}
}

func (m *CPUModel) promptPass() {
	for _, y := range m.years {
		t := m.params.T0Factor * m.events.Events(y, KindData) * m.recoCost[y] / m.params.CPUEfficiency
		m.Prompt.Time[y] = t
		m.Prompt.Required[y] = t / PromptWindow
	}
}

// rerecoPass re-reconstructs 25% of this year's data within a month and 25%
// of the previous year's (taken to be the same size) within three months.
func (m *CPUModel) rerecoPass() {
	for _, y := range m.years {
		m.Rereco.Required[y] = RerecoRequired(m.events.Events(y, KindData), m.recoCost[y])
		m.Rereco.Time[y] = 1.25 * m.events.Events(y, KindData) * m.recoCost[y]
	}
}

// RerecoRequired is the larger of the one-month and three-month targets.
func RerecoRequired(events, recoCost float64) float64 {
	return max(0.25*events*recoCost/SecondsPerMonth, events*recoCost/(3*SecondsPerMonth))
}

func (m *CPUModel) simulationPass() {
	for _, era := range m.events.Eras() {
		act := newActivity(m.years)
		byTier := make(map[string]YearSeries, len(m.params.SimWorkflow))
		for _, tier := range m.params.SimWorkflow {
			byTier[tier] = newYearSeries(m.years)
		}
		for _, y := range m.years {
			n := m.events.Events(y, MCKind(era))
			act.Time[y] = n * m.simCost[era][y] / m.params.CPUEfficiency
			act.Required[y] = act.Time[y] / SecondsPerYear
			for tier, c := range m.simCostByTier[era][y] {
				byTier[tier][y] += n * c / m.params.CPUEfficiency
			}
		}
		m.Simulation[era] = act
		m.SimulationByTier[era] = byTier
	}

	// new detectors leave half a year for the running campaign
	for _, y := range m.params.NewDetectorYears {
		if !m.params.InHorizon(y) {
			continue
		}
		if act, ok := m.Simulation[m.campaignEra(y)]; ok {
			act.Required[y] *= 2
		}
	}
}

// campaignEra is the era whose simulation campaign runs in year.
func (m *CPUModel) campaignEra(year int) string {
	future, err := strconv.Atoi(m.params.Eras.Future)
	if err == nil && year >= future {
		return m.params.Eras.Future
	}
	return m.params.Eras.Current
}

func (m *CPUModel) analysisPass() {
	for _, y := range m.years {
		m.Analysis.Time[y], m.Analysis.Required[y] = m.analysis.Estimate(y)
	}
	if adj, ok := m.analysis.(interface{ Adjust(*Activity) }); ok {
		adj.Adjust(&m.Analysis)
	}
}

// Categories returns the activities in report order: prompt, re-processing,
// each simulation era, analysis.
func (m *CPUModel) Categories() []NamedActivity {
	out := []NamedActivity{
		{Name: CategoryPrompt, Activity: m.Prompt},
		{Name: CategoryRereco, Activity: m.Rereco},
	}
	for _, era := range m.events.Eras() {
		out = append(out, NamedActivity{Name: SimCategory(era), Activity: m.Simulation[era]})
	}
	return append(out, NamedActivity{Name: CategoryAnalysis, Activity: m.Analysis})
}

// Category names used in reports.
const (
	CategoryPrompt   = "Prompt Data"
	CategoryRereco   = "Non-Prompt Data"
	CategoryAnalysis = "Analysis"
)

// SimCategory names the simulation category of an era.
func SimCategory(era string) string {
	return MCKind(era)
}

// NamedActivity is an Activity tagged with its category name.
type NamedActivity struct {
	Name string
	Activity
}
