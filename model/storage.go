package model

import (
	"slices"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hepcomp/resource-model/model/ramp"
)

// OriginOther labels static allocations that are not produced by the model.
const OriginOther = "Other"

// LegacyColumn names the column that carries pre-model disk usage.
const LegacyColumn = "Run1 & 2015"

// DefaultLegacyDisk is the pre-model disk usage in PB used when
// legacyInfoDict is not configured.
var DefaultLegacyDisk = map[int]float64{2016: 25, 2017: 25, 2018: 10, 2019: 5, 2020: 0}

// tierOrder lists tiers from least to most refined.
var tierOrder = []string{"Ops space", "RAW", "GENSIM", "DIGI", "RECO", "AOD", "MINIAOD", "NANOAOD", "USER"}

// SortTiers orders tiers from least to most refined; unknown tiers follow in
// alphabetical order.
func SortTiers(tiers []string) {
	rank := func(t string) int {
		if i := slices.Index(tierOrder, t); i >= 0 {
			return i
		}
		return len(tierOrder)
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		ri, rj := rank(tiers[i]), rank(tiers[j])
		if ri != rj {
			return ri < rj
		}
		return tiers[i] < tiers[j]
	})
}

// Sample is one contribution to a year's occupancy.
type Sample struct {
	ProducedYear int     `json:"produced_year"`
	Origin       string  `json:"origin"`
	Tier         string  `json:"tier"`
	Size         float64 `json:"size"`
	Copies       float64 `json:"copies,omitempty"`
}

// Occupancy is the space held on one medium, in PB in the matrices and bytes
// elsewhere.
type Occupancy struct {
	ByYear   *mat.Dense                            // consuming year x producing year
	ByTier   *mat.Dense                            // consuming year x TierColumns
	ByOrigin map[int]map[string]map[string]float64 // year -> origin -> tier -> bytes
	Samples  map[int][]Sample
}

func newOccupancy(years []int, columns int) Occupancy {
	o := Occupancy{
		ByYear:   mat.NewDense(len(years), len(years), nil),
		ByTier:   mat.NewDense(len(years), columns, nil),
		ByOrigin: make(map[int]map[string]map[string]float64, len(years)),
		Samples:  make(map[int][]Sample, len(years)),
	}
	for _, y := range years {
		o.ByOrigin[y] = make(map[string]map[string]float64)
		o.Samples[y] = []Sample{}
	}
	return o
}

func (o *Occupancy) add(year int, origin, tier string, bytes float64) {
	if o.ByOrigin[year][origin] == nil {
		o.ByOrigin[year][origin] = make(map[string]float64)
	}
	o.ByOrigin[year][origin][tier] += bytes
}

// StorageModel computes disk and tape occupancy per year.
type StorageModel struct {
	params   *Parameters
	calendar Calendar
	events   *EventsModel
	perf     *PerformanceModel
	policy   RetentionPolicy
	years    []int
	index    map[int]int

	Tiers       []string // produced tiers in report order
	StaticTiers []string // static allocations not among Tiers
	TierColumns []string // Tiers followed by StaticTiers

	Produced       map[int]map[string]map[string]float64 // year -> origin -> tier -> bytes
	ProducedByTier *mat.Dense                            // year x Tiers, PB

	Disk Occupancy
	Tape Occupancy

	TiersOnDisk  YearSeries // tiers contributing fresh disk copies
	CopiesOnDisk YearSeries // sum of their first-year disk copies
	LegacyDisk   YearSeries // PB

	DiskFillFactor float64
	TapeFillFactor float64
}

// NewStorageModel evaluates production and occupancy for every year.
func NewStorageModel(p *Parameters, cal Calendar, events *EventsModel, perf *PerformanceModel) *StorageModel {
	years := p.Years()
	m := &StorageModel{
		params:       p,
		calendar:     cal,
		events:       events,
		perf:         perf,
		policy:       NewRetentionPolicy(p.StorageModel.TapePolicy, p.StorageModel),
		years:        years,
		index:        make(map[int]int, len(years)),
		Produced:     make(map[int]map[string]map[string]float64, len(years)),
		TiersOnDisk:  newYearSeries(years),
		CopiesOnDisk: newYearSeries(years),
		LegacyDisk:   newYearSeries(years),
	}
	for i, y := range years {
		m.index[y] = i
	}

	for tier := range p.TierSizes {
		m.Tiers = append(m.Tiers, tier)
	}
	SortTiers(m.Tiers)
	statics := make(map[string]bool)
	for tier := range p.StaticDisk {
		statics[tier] = true
	}
	for tier := range p.StaticTape {
		statics[tier] = true
	}
	for tier := range statics {
		if !slices.Contains(m.Tiers, tier) {
			m.StaticTiers = append(m.StaticTiers, tier)
		}
	}
	SortTiers(m.StaticTiers)
	m.TierColumns = append(slices.Clone(m.Tiers), m.StaticTiers...)

	m.DiskFillFactor = (1 / p.DiskFillFactor) * (p.Tier1DiskFraction*(1+p.Tier1DiskBufferFraction) + (1 - p.Tier1DiskFraction))
	m.TapeFillFactor = 1 / p.TapeFillFactor

	m.Disk = newOccupancy(years, len(m.TierColumns))
	m.Tape = newOccupancy(years, len(m.TierColumns))

	m.producedPass()
	m.occupancyPass()
	m.legacyPass()
	logrus.Debugf("Storage: %d tiers, %d static, disk fill %.3f, tape fill %.3f, tape policy %s",
		len(m.Tiers), len(m.StaticTiers), m.DiskFillFactor, m.TapeFillFactor, p.StorageModel.TapePolicy)
	return m
}

// excludedOrigin reports whether tier is restricted to the other origin.
func (m *StorageModel) excludedOrigin(tier, origin string) bool {
	if origin == OriginData {
		return slices.Contains(m.params.MCOnlyTiers, tier)
	}
	return slices.Contains(m.params.DataOnlyTiers, tier)
}

func (m *StorageModel) producedPass() {
	m.ProducedByTier = mat.NewDense(len(m.years), len(m.Tiers), nil)
	for _, y := range m.years {
		m.Produced[y] = map[string]map[string]float64{}
		for _, kind := range m.events.Kinds() {
			origin, era := OriginMC, eraOfKind(kind)
			if kind == KindData {
				origin = OriginData
			}
			n := m.events.Events(y, kind)
			for j, tier := range m.Tiers {
				if m.excludedOrigin(tier, origin) {
					continue
				}
				size, err := m.perf.SizePerEvent(y, tier, origin, era)
				if err != nil {
					logrus.Debugf("Storage: %v", err)
					continue
				}
				if m.Produced[y][origin] == nil {
					m.Produced[y][origin] = make(map[string]float64)
				}
				m.Produced[y][origin][tier] += size * n
				m.ProducedByTier.Set(m.index[y], j, m.ProducedByTier.At(m.index[y], j)+size*n/Peta)
			}
		}
	}
}

func (m *StorageModel) occupancyPass() {
	for _, y := range m.years {
		m.addStatic(&m.Disk, y, m.params.StaticDisk)
		m.addStatic(&m.Tape, y, m.params.StaticTape)

		inShutdown, lastActive := m.calendar.InShutdown(y)
		for _, produced := range m.years {
			if produced > y {
				break
			}
			for _, origin := range []string{OriginData, OriginMC} {
				for _, tier := range m.Tiers {
					size, ok := m.Produced[produced][origin][tier]
					if !ok {
						continue
					}
					scaleDisk := scaleAt(m.params.StorageModel.DiskScaling, tier, produced)
					scaleTape := scaleAt(m.params.StorageModel.TapeScaling, tier, produced)
					diskSeq := m.policy.DiskCopies(tier)
					tapeSeq := m.policy.TapeCopies(tier)

					if produced == y && !slices.Contains(m.params.ReplicaCountExcludedTiers, tier) {
						m.TiersOnDisk[y]++
						m.CopiesOnDisk[y] += copiesAt(diskSeq, 0) * scaleDisk
					}

					onDisk := copiesAt(diskSeq, retentionAge(diskSeq, y, produced, inShutdown, lastActive))
					onTape := copiesAt(tapeSeq, retentionAge(tapeSeq, y, produced, inShutdown, lastActive))
					if size != 0 && onDisk != 0 {
						contr := size * onDisk * m.DiskFillFactor * scaleDisk
						m.record(&m.Disk, y, produced, origin, tier, contr, onDisk)
					}
					if size != 0 && onTape != 0 {
						contr := size * onTape * m.TapeFillFactor * scaleTape
						m.record(&m.Tape, y, produced, origin, tier, contr, onTape)
					}
				}
			}
		}
	}
	m.fillByTier(&m.Disk)
	m.fillByTier(&m.Tape)
}

// retentionAge is years since production, frozen at the last active year
// while the consuming year is in shutdown.
func retentionAge(seq []float64, year, produced int, inShutdown bool, lastActive int) int {
	age := year - produced
	if age < len(seq) && inShutdown {
		age = lastActive - produced
	}
	return max(age, 0)
}

func scaleAt(scaling map[string]ramp.Ramp, tier string, produced int) float64 {
	r, ok := scaling[tier]
	if !ok {
		return 1
	}
	return r.StepOr(produced, 1)
}

func (m *StorageModel) addStatic(o *Occupancy, year int, static map[string]ramp.Ramp) {
	for _, tier := range sortedKeys(static) {
		size, control, err := static[tier].Step(year)
		if err != nil {
			continue
		}
		produced := max(control, m.params.StartYear)
		o.add(year, OriginOther, tier, size)
		o.Samples[year] = append(o.Samples[year], Sample{ProducedYear: produced, Origin: OriginOther, Tier: tier, Size: size})
		i, j := m.index[year], m.index[produced]
		o.ByYear.Set(i, j, o.ByYear.At(i, j)+size/Peta)
	}
}

func (m *StorageModel) record(o *Occupancy, year, produced int, origin, tier string, bytes, copies float64) {
	o.add(year, origin, tier, bytes)
	o.Samples[year] = append(o.Samples[year], Sample{ProducedYear: produced, Origin: origin, Tier: tier, Size: bytes, Copies: copies})
	i, j := m.index[year], m.index[produced]
	o.ByYear.Set(i, j, o.ByYear.At(i, j)+bytes/Peta)
}

func (m *StorageModel) fillByTier(o *Occupancy) {
	for _, y := range m.years {
		for _, tiers := range o.ByOrigin[y] {
			for tier, bytes := range tiers {
				j := slices.Index(m.TierColumns, tier)
				if j < 0 {
					continue
				}
				o.ByTier.Set(m.index[y], j, o.ByTier.At(m.index[y], j)+bytes/Peta)
			}
		}
	}
}

func (m *StorageModel) legacyPass() {
	source := map[int]float64(m.params.LegacyDisk)
	if len(source) == 0 {
		source = DefaultLegacyDisk
	}
	for y, v := range source {
		if m.params.InHorizon(y) {
			m.LegacyDisk[y] = v
		}
	}
}

// Years returns the horizon years in row order of the matrices.
func (m *StorageModel) Years() []int {
	return m.years
}

// Total returns the occupancy of o in year, in PB.
func (m *StorageModel) Total(o Occupancy, year int) float64 {
	i, ok := m.index[year]
	if !ok {
		return 0
	}
	return floats.Sum(mat.Row(nil, i, o.ByTier))
}

// AverageReplication is the mean first-year disk copies per counted tier.
func (m *StorageModel) AverageReplication(year int) (float64, error) {
	return Ratio(m.CopiesOnDisk[year], m.TiersOnDisk[year])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
