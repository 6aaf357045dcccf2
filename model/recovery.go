package model

import "github.com/sirupsen/logrus"

// recoveryFactor is how many prior active years of data and simulation are
// reprocessed on entering a shutdown.
const recoveryFactor = 3

// recoveryPass catches up re-processing and simulation in the first year of
// every shutdown. It runs after the main passes, in ascending year order,
// because a recovery year may write the following year's entry.
//
// The load of a recovery year replaces that year's values and is spread over
// a full year. From first_year_to_spread_rereco_over_two_years on, half of it
// moves to the next year when that year is in the horizon and does not start
// a shutdown itself. The moved half is added on top of the next year's own
// time and rate.
func (m *CPUModel) recoveryPass() {
	for _, y := range m.years {
		if !m.calendar.IsShutdownEntry(y) {
			continue
		}
		era := m.campaignEra(y)

		rerecoLoad := recoveryFactor * m.events.RealEvents(y-1) * m.recoCost[y]
		var simLoad float64
		tierLoad := make(map[string]float64)
		if _, ok := m.Simulation[era]; ok {
			mcEvents := recoveryFactor * m.events.SimulatedEvents(y-1, era)
			simLoad = mcEvents * m.simCost[era][y] / m.params.CPUEfficiency
			for tier, c := range m.simCostByTier[era][y] {
				tierLoad[tier] = mcEvents * c / m.params.CPUEfficiency
			}
		}

		share := 1.0
		spread := m.params.FirstYearToSpreadRereco > 0 &&
			y >= m.params.FirstYearToSpreadRereco &&
			m.params.InHorizon(y+1) &&
			!m.calendar.IsShutdownEntry(y+1)
		if spread {
			share = 0.5
		}
		m.applyRecovery(y, era, share, rerecoLoad, simLoad, tierLoad, false)
		if spread {
			m.applyRecovery(y+1, era, 1-share, rerecoLoad, simLoad, tierLoad, true)
		}
		logrus.Debugf("Recovery: %d reprocesses %.4g HS06*s, simulates %.4g HS06*s (%s), spread %v", y, rerecoLoad, simLoad, era, spread)
	}
}

// applyRecovery writes share of a recovery load into year y. With add set the
// load is accumulated onto the year's values, otherwise it replaces them.
func (m *CPUModel) applyRecovery(y int, era string, share, rerecoLoad, simLoad float64, tierLoad map[string]float64, add bool) {
	if !add {
		m.Rereco.Time[y], m.Rereco.Required[y] = 0, 0
	}
	m.Rereco.Time[y] += share * rerecoLoad
	m.Rereco.Required[y] += share * rerecoLoad / SecondsPerYear

	act, ok := m.Simulation[era]
	if !ok {
		return
	}
	if !add {
		act.Time[y], act.Required[y] = 0, 0
	}
	act.Time[y] += share * simLoad
	act.Required[y] += share * simLoad / SecondsPerYear
	for tier, series := range m.SimulationByTier[era] {
		if !add {
			series[y] = 0
		}
		series[y] += share * tierLoad[tier]
	}
}
