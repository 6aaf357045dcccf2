// Package report renders a model.Projection as tables and writes them to
// stdout, CSV files, an XLSX workbook, sample snapshots and a Prometheus
// textfile.
package report

import (
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hepcomp/resource-model/model"
	"github.com/hepcomp/resource-model/model/capacity"
)

// Table is one year-indexed report table. Rows are horizon years in order;
// every row has one value per column.
type Table struct {
	Name      string // file and sheet stem
	Title     string
	Unit      string
	Precision int
	Columns   []string
	Years     []int
	Rows      [][]float64
}

func (t *Table) addRow(year int, values ...float64) {
	t.Years = append(t.Years, year)
	t.Rows = append(t.Rows, values)
}

// ratioOrZero reports degenerate ratios as zero.
func ratioOrZero(num, den float64) float64 {
	r, err := model.Ratio(num, den)
	if err != nil {
		logrus.Debugf("report: %v", err)
		return 0
	}
	return r
}

// EventsTable lists events produced per kind, in billions.
func EventsTable(pr *model.Projection) Table {
	t := Table{
		Name:      "events",
		Title:     "Events produced by kind",
		Unit:      "billions",
		Precision: 3,
		Columns:   pr.Events.Kinds(),
	}
	for i, row := range pr.Events.Matrix() {
		t.addRow(pr.Params.Years()[i], row...)
	}
	return t
}

// cpuColumns are the processing table columns after the categories.
var cpuColumns = []string{"Total", "Cap1", "Cap2", "Ratio", "Participant", "HPC"}

// categoryColumn shortens category names for the processing tables.
func categoryColumn(name string) string {
	switch name {
	case model.CategoryPrompt:
		return "Prompt"
	case model.CategoryRereco:
		return "NonPrompt"
	case model.CategoryAnalysis:
		return "Ana"
	}
	return name
}

// CPURequiredTable lists the processing rate per category in MHS06, both
// capacity projections, the ratio of required to ledger capacity, the
// participant share and the HPC-eligible fraction.
func CPURequiredTable(pr *model.Projection) Table {
	categories := pr.CPU.Categories()
	t := Table{Name: "cpu_required", Title: "CPU requirements in HS06", Unit: "MHS06", Precision: 3}
	for _, c := range categories {
		t.Columns = append(t.Columns, categoryColumn(c.Name))
	}
	t.Columns = append(t.Columns, cpuColumns...)

	agg := pr.Aggregate
	for _, y := range pr.Params.Years() {
		var row []float64
		for _, c := range categories {
			row = append(row, c.Required[y]/model.Mega)
		}
		ledger := pr.Capacity.Ledger[capacity.CPU][y]
		row = append(row,
			agg.Required[y]/model.Mega,
			pr.Capacity.Simple[capacity.CPU][y]/model.Mega,
			ledger/model.Mega,
			ratioOrZero(agg.Required[y], ledger),
			agg.ParticipantRequired[y]/model.Mega,
			ratioOrZero(agg.HPCRequired[y], agg.Required[y]),
		)
		t.addRow(y, row...)
	}
	return t
}

// CPUTimeTable is CPURequiredTable for processing time, in THS06*s.
func CPUTimeTable(pr *model.Projection) Table {
	categories := pr.CPU.Categories()
	t := Table{Name: "cpu_time", Title: "CPU requirements in HS06 * s", Unit: "THS06 * s", Precision: 2}
	for _, c := range categories {
		t.Columns = append(t.Columns, categoryColumn(c.Name))
	}
	t.Columns = append(t.Columns, cpuColumns...)

	agg := pr.Aggregate
	for _, y := range pr.Params.Years() {
		var row []float64
		for _, c := range categories {
			row = append(row, c.Time[y]/model.Tera)
		}
		ledger := pr.Capacity.CPUTimeLedger[y]
		row = append(row,
			agg.Time[y]/model.Tera,
			pr.Capacity.CPUTimeSimple[y]/model.Tera,
			ledger/model.Tera,
			ratioOrZero(agg.Time[y], ledger),
			agg.ParticipantTime[y]/model.Tera,
			ratioOrZero(agg.HPCTime[y], agg.Time[y]),
		)
		t.addRow(y, row...)
	}
	return t
}

// DCFractionsTable lists the distributed-computing shares per year.
func DCFractionsTable(pr *model.Projection) Table {
	t := Table{
		Name:      "dc_fractions",
		Title:     "Distributed computing fractions",
		Unit:      "fraction",
		Precision: 3,
		Columns:   model.DCShares,
	}
	for _, y := range pr.Params.Years() {
		var row []float64
		for _, share := range model.DCShares {
			row = append(row, pr.Aggregate.Fractions[share][y])
		}
		t.addRow(y, row...)
	}
	return t
}

// ProducedTable lists data produced per tier before versions and replicas, in PB.
func ProducedTable(pr *model.Projection) Table {
	s := pr.Storage
	t := Table{Name: "produced_by_tier", Title: "Data produced by tier", Unit: "PB", Precision: 2, Columns: s.Tiers}
	for i, y := range s.Years() {
		t.addRow(y, mat.Row(nil, i, s.ProducedByTier)...)
	}
	return t
}

// ByTierTable lists occupancy of one medium per tier, in PB, followed by the
// legacy column (disk only), the total, the participant share of the total
// and the ledger capacity. Disk also reports the average replication factor.
func ByTierTable(pr *model.Projection, resource string) Table {
	s := pr.Storage
	occ, title := s.Disk, "Data on disk by tier"
	if resource == capacity.Tape {
		occ, title = s.Tape, "Data on tape by tier"
	}
	t := Table{Name: resource + "_by_tier", Title: title, Unit: "PB", Precision: 2}
	t.Columns = append(t.Columns, s.TierColumns...)
	if resource == capacity.Disk {
		t.Columns = append(t.Columns, model.LegacyColumn)
	}
	t.Columns = append(t.Columns, "Total", "Participant", "Capacity")
	if resource == capacity.Disk {
		t.Columns = append(t.Columns, "Replication")
	}

	for i, y := range s.Years() {
		row := mat.Row(nil, i, occ.ByTier)
		if resource == capacity.Disk {
			row = append(row, s.LegacyDisk[y])
		}
		total := floats.Sum(row)
		row = append(row, total, pr.Params.USFractionT1T2*total, pr.Capacity.Ledger[resource][y]/model.Peta)
		if resource == capacity.Disk {
			avg, err := s.AverageReplication(y)
			if err != nil {
				logrus.Debugf("report: %d: %v", y, err)
			}
			row = append(row, avg)
		}
		t.addRow(y, row...)
	}
	return t
}

// ByYearTable lists occupancy of one medium per producing year, in PB.
func ByYearTable(pr *model.Projection, resource string) Table {
	s := pr.Storage
	occ, title := s.Disk, "Data on disk by year produced"
	if resource == capacity.Tape {
		occ, title = s.Tape, "Data on tape by year produced"
	}
	t := Table{Name: resource + "_by_year", Title: title, Unit: "PB", Precision: 2}
	for _, y := range s.Years() {
		t.Columns = append(t.Columns, strconv.Itoa(y))
	}
	if resource == capacity.Disk {
		t.Columns = append(t.Columns, model.LegacyColumn)
	}
	t.Columns = append(t.Columns, "Capacity")

	for i, y := range s.Years() {
		row := mat.Row(nil, i, occ.ByYear)
		if resource == capacity.Disk {
			row = append(row, s.LegacyDisk[y])
		}
		row = append(row, pr.Capacity.Ledger[resource][y]/model.Peta)
		t.addRow(y, row...)
	}
	return t
}

// Section selects a group of tables.
type Section string

// Report sections, one per subcommand.
const (
	SectionEvents  Section = "events"
	SectionCPU     Section = "cpu"
	SectionStorage Section = "storage"
)

// Tables builds the tables of the requested sections in order.
func Tables(pr *model.Projection, sections ...Section) []Table {
	var out []Table
	for _, s := range sections {
		switch s {
		case SectionEvents:
			out = append(out, EventsTable(pr))
		case SectionCPU:
			out = append(out, CPURequiredTable(pr), CPUTimeTable(pr), DCFractionsTable(pr))
		case SectionStorage:
			out = append(out,
				ProducedTable(pr),
				ByTierTable(pr, capacity.Disk),
				ByTierTable(pr, capacity.Tape),
				ByYearTable(pr, capacity.Disk),
				ByYearTable(pr, capacity.Tape),
			)
		default:
			logrus.Warnf("report: unknown section %q", s)
		}
	}
	return out
}
