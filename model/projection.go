package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/hepcomp/resource-model/model/capacity"
)

// CapacityTables holds available capacity per resource from both growth
// models. The simple model is optional for disk and tape.
type CapacityTables struct {
	Simple map[string]capacity.Series
	Ledger map[string]capacity.Series

	// CPU time capacity, HS06*s, assuming a full year of use
	CPUTimeSimple capacity.Series
	CPUTimeLedger capacity.Series
}

// Projection is a complete evaluation of the model over its horizon.
type Projection struct {
	Params      *Parameters
	Calendar    Calendar
	Events      *EventsModel
	Performance *PerformanceModel
	CPU         *CPUModel
	Storage     *StorageModel
	Capacity    CapacityTables
	Aggregate   *Aggregate
}

// Run evaluates every engine in dependency order.
func Run(p *Parameters) (*Projection, error) {
	cal := NewCalendar(p.ShutdownYears)
	events := NewEventsModel(p, cal)
	perf := NewPerformanceModel(p)
	cpu := NewCPUModel(p, cal, events, perf)
	storage := NewStorageModel(p, cal, events, perf)

	caps, err := ProjectCapacity(p)
	if err != nil {
		return nil, err
	}

	pr := &Projection{
		Params:      p,
		Calendar:    cal,
		Events:      events,
		Performance: perf,
		CPU:         cpu,
		Storage:     storage,
		Capacity:    caps,
		Aggregate:   NewAggregate(p, cpu),
	}
	logrus.Infof("Projection complete for %d-%d", p.StartYear, p.EndYear)
	return pr, nil
}

// ProjectCapacity runs the ledger model for cpu, disk and tape and the simple
// model for every configured resource.
func ProjectCapacity(p *Parameters) (CapacityTables, error) {
	years := p.Years()
	tables := CapacityTables{
		Simple: make(map[string]capacity.Series),
		Ledger: make(map[string]capacity.Series),
	}
	for _, res := range capacity.Resources {
		m := capacity.NewLedgerModel(p.CapacityModel.Ledger(res), p.ImprovementFactors.For(res))
		ledger, err := projectSeries(m, years)
		if err != nil {
			return tables, fmt.Errorf("projecting %s ledger capacity: %w", res, err)
		}
		tables.Ledger[res] = ledger
	}
	for _, res := range slices.Sorted(maps.Keys(p.SimpleCapacity)) {
		m := capacity.NewSimpleModel(p.SimpleCapacity[res], p.ImprovementFactors.For(res))
		simple, err := projectSeries(m, years)
		if err != nil {
			return tables, fmt.Errorf("projecting %s simple capacity: %w", res, err)
		}
		tables.Simple[res] = simple
	}
	tables.CPUTimeLedger = tables.Ledger[capacity.CPU].Scale(SecondsPerYear)
	tables.CPUTimeSimple = tables.Simple[capacity.CPU].Scale(SecondsPerYear)
	return tables, nil
}

// projectSeries runs m over years and checks that every year is covered.
func projectSeries(m capacity.Model, years []int) (capacity.Series, error) {
	s, err := m.Project(years)
	if err != nil {
		return nil, err
	}
	for _, y := range years {
		if _, ok := s[y]; !ok {
			return nil, fmt.Errorf("no capacity for %d", y)
		}
	}
	return s, nil
}

// CPUUtilization is the required processing rate over ledger cpu capacity.
func (pr *Projection) CPUUtilization(year int) (float64, error) {
	return Ratio(pr.Aggregate.Required[year], pr.Capacity.Ledger[capacity.CPU][year])
}

// StorageUtilization is occupancy over ledger capacity for disk or tape.
func (pr *Projection) StorageUtilization(resource string, year int) (float64, error) {
	occ := pr.Storage.Disk
	if resource == capacity.Tape {
		occ = pr.Storage.Tape
	}
	used := pr.Storage.Total(occ, year) * Peta
	if resource == capacity.Disk {
		used += pr.Storage.LegacyDisk[year] * Peta
	}
	return Ratio(used, pr.Capacity.Ledger[resource][year])
}
