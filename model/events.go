package model

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Time constants shared by every engine.
const (
	SecondsPerYear  = 86400 * 365
	SecondsPerMonth = 86400 * 30
	// PromptWindow is the catch-up window for prompt reconstruction, in seconds.
	PromptWindow = 7.8e6
)

// Unit multipliers for reporting.
const (
	Mega = 1e6
	Giga = 1e9
	Tera = 1e12
	Peta = 1e15
)

// KindData labels real detector events.
const KindData = "Data"

// MCKind returns the events-table kind for a simulation era.
func MCKind(era string) string {
	return era + " MC"
}

// eraOfKind returns the era for an MC kind, or "" for Data.
func eraOfKind(kind string) string {
	if era, ok := strings.CutSuffix(kind, " MC"); ok {
		return era
	}
	return ""
}

// EventsModel computes real and simulated event counts per year.
type EventsModel struct {
	params   *Parameters
	calendar Calendar
	eras     []string
	table    map[int]map[string]float64
}

// NewEventsModel evaluates event counts for every year of the horizon.
func NewEventsModel(p *Parameters, cal Calendar) *EventsModel {
	m := &EventsModel{
		params:   p,
		calendar: cal,
		eras:     p.EraNames(),
		table:    make(map[int]map[string]float64, p.EndYear-p.StartYear+1),
	}
	for _, y := range p.Years() {
		row := map[string]float64{KindData: m.RealEvents(y)}
		for _, era := range m.eras {
			row[MCKind(era)] = m.SimulatedEvents(y, era)
		}
		m.table[y] = row
	}
	logrus.Debugf("Events: %d years, kinds %v", len(m.table), m.Kinds())
	return m
}

// RealEvents returns the detector events recorded in year. It is defined for
// any year, including years outside the horizon, and is zero in shutdown.
func (m *EventsModel) RealEvents(year int) float64 {
	if in, _ := m.calendar.InShutdown(year); in {
		return 0
	}
	trigger, _, err := m.params.TriggerRate.Step(year)
	if err != nil {
		logrus.Debugf("Events: trigger_rate undefined for %d: %v", year, err)
		return 0
	}
	live, _, err := m.params.LiveFraction.Step(year)
	if err != nil {
		logrus.Debugf("Events: live_fraction undefined for %d: %v", year, err)
		return 0
	}
	return SecondsPerYear * live * trigger
}

// SimulatedEvents returns the events of an era simulated in year. The
// reference count is the largest of this year's real events, the last active
// year's when in shutdown, and the era year's when that lies in the future.
func (m *EventsModel) SimulatedEvents(year int, era string) float64 {
	fraction, ok := m.params.MCEvolution[era]
	if !ok {
		return 0
	}
	reference := m.RealEvents(year)
	if in, last := m.calendar.InShutdown(year); in {
		reference = max(reference, m.RealEvents(last))
	}
	if eraYear, err := strconv.Atoi(era); err == nil && eraYear > year {
		reference = max(reference, m.RealEvents(eraYear))
	}
	return fraction.Interpolate(year) * reference
}

// Events returns the tabulated count for a horizon year and kind.
func (m *EventsModel) Events(year int, kind string) float64 {
	return m.table[year][kind]
}

// Eras returns the simulation eras in ascending order.
func (m *EventsModel) Eras() []string {
	return m.eras
}

// Kinds returns the MC kinds in era order followed by Data.
func (m *EventsModel) Kinds() []string {
	kinds := make([]string, 0, len(m.eras)+1)
	for _, era := range m.eras {
		kinds = append(kinds, MCKind(era))
	}
	return append(kinds, KindData)
}

// Table returns year -> kind -> events for every horizon year.
func (m *EventsModel) Table() map[int]map[string]float64 {
	return m.table
}

// Matrix returns one row per horizon year and one column per kind, in billions.
func (m *EventsModel) Matrix() [][]float64 {
	kinds := m.Kinds()
	rows := make([][]float64, 0, len(m.table))
	for _, y := range m.params.Years() {
		row := make([]float64, len(kinds))
		for i, k := range kinds {
			row[i] = m.table[y][k] / Giga
		}
		rows = append(rows, row)
	}
	return rows
}
