package model

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hepcomp/resource-model/model/internal/testutil"
)

// storageFor builds the storage engine and its dependencies for p.
func storageFor(p *Parameters) *StorageModel {
	cal := NewCalendar(p.ShutdownYears)
	return NewStorageModel(p, cal, NewEventsModel(p, cal), NewPerformanceModel(p))
}

// column returns the ByTier value of tier in year, in PB.
func column(t *testing.T, m *StorageModel, o Occupancy, year int, tier string) float64 {
	t.Helper()
	j := slices.Index(m.TierColumns, tier)
	require.GreaterOrEqual(t, j, 0, "tier %s", tier)
	return o.ByTier.At(m.index[year], j)
}

func TestStorage_FillFactors(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	// 50% at Tier 1 with a 20% buffer, 90% disk fill
	assert.InDelta(t, 1.1/0.9, m.DiskFillFactor, 1e-12)
	assert.InDelta(t, 1/0.95, m.TapeFillFactor, 1e-12)
}

func TestStorage_SingleYearUnitFactors(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.SingleYear))

	assert.Equal(t, 1.0, m.DiskFillFactor)
	assert.Equal(t, 1.0, m.TapeFillFactor)
	assert.InDelta(t, 15768000000.0/Peta, m.Total(m.Disk, 2020), 1e-15)
	assert.InDelta(t, 15768000000.0/Peta, m.Total(m.Tape, 2020), 1e-15)
}

func TestStorage_TierColumnsAndOrigins(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	assert.Equal(t, []string{"RAW", "GENSIM", "AOD", "USER"}, m.Tiers)
	assert.Equal(t, []string{"Ops space"}, m.StaticTiers)
	assert.Equal(t, []string{"RAW", "GENSIM", "AOD", "USER", "Ops space"}, m.TierColumns)

	// RAW is data only, GENSIM simulation only
	_, ok := m.Produced[2017][OriginMC]["RAW"]
	assert.False(t, ok)
	_, ok = m.Produced[2017][OriginData]["GENSIM"]
	assert.False(t, ok)
}

func TestStorage_RawDiskAndTapeInFirstYear(t *testing.T) {
	// GIVEN 15768000000 data events at 1 MB each
	m := storageFor(loadFixture(t, testutil.MultiYear))
	raw := 1.5768e16
	testutil.AssertFloat64Equal(t, "RAW produced", raw, m.Produced[2017][OriginData]["RAW"], 1e-12)

	// THEN disk holds one copy and tape two, scaled by their fill factors
	testutil.AssertFloat64Equal(t, "RAW disk", raw*1.1/0.9/Peta, column(t, m, m.Disk, 2017, "RAW"), 1e-12)
	testutil.AssertFloat64Equal(t, "RAW tape", 2*raw/0.95/Peta, column(t, m, m.Tape, 2017, "RAW"), 1e-12)
}

func TestStorage_ZeroDiskReplicasKeepTierOffDisk(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	j := slices.Index(m.Tiers, "GENSIM")
	assert.Greater(t, m.ProducedByTier.At(m.index[2018], j), 0.0)
	for _, y := range m.Years() {
		assert.Equal(t, 0.0, column(t, m, m.Disk, y, "GENSIM"), "year %d", y)
	}
	assert.Greater(t, column(t, m, m.Tape, 2018, "GENSIM"), 0.0)
}

func TestStorage_ShutdownFreezesRetentionAge(t *testing.T) {
	// GIVEN AOD with copies [4, 1] and a shutdown in 2019 after running in 2018
	m := storageFor(loadFixture(t, testutil.MultiYear))

	// THEN 2018 data still holds its first-year copies in 2019
	var copies []float64
	for _, s := range m.Disk.Samples[2019] {
		if s.ProducedYear == 2018 && s.Origin == OriginData && s.Tier == "AOD" {
			copies = append(copies, s.Copies)
		}
	}
	assert.Equal(t, []float64{4}, copies)

	// AND drops to one copy once past the sequence
	for _, s := range m.Disk.Samples[2021] {
		if s.ProducedYear == 2018 && s.Tier == "AOD" {
			assert.Equal(t, 1.0, s.Copies)
		}
	}
}

func TestStorage_StaticAllocationEveryYear(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	for _, y := range m.Years() {
		assert.Equal(t, 5.0e15, m.Disk.ByOrigin[y][OriginOther]["Ops space"], "year %d", y)
		assert.InDelta(t, 5.0, column(t, m, m.Disk, y, "Ops space"), 1e-12, "year %d", y)
	}
	// static tape is empty
	assert.Empty(t, m.Tape.ByOrigin[2017][OriginOther])
}

func TestStorage_DiskScalingByProducedYear(t *testing.T) {
	// GIVEN USER disk scaled by 2 for data produced from 2022
	m := storageFor(loadFixture(t, testutil.MultiYear))

	for _, tc := range []struct {
		year  int
		scale float64
	}{{2021, 1}, {2022, 2}, {2023, 2}} {
		var got float64
		for _, s := range m.Disk.Samples[tc.year] {
			if s.ProducedYear == tc.year && s.Origin == OriginData && s.Tier == "USER" {
				got += s.Size
			}
		}
		want := m.Produced[tc.year][OriginData]["USER"] * m.DiskFillFactor * tc.scale
		testutil.AssertFloat64Equal(t, "USER disk", want, got, 1e-12)
	}
}

func TestStorage_ReplicaCounters(t *testing.T) {
	// GIVEN RAW, GENSIM and USER excluded from counting
	m := storageFor(loadFixture(t, testutil.MultiYear))

	// THEN only AOD from data and simulation counts, with 4 copies each
	assert.Equal(t, 2.0, m.TiersOnDisk[2017])
	assert.Equal(t, 8.0, m.CopiesOnDisk[2017])
	avg, err := m.AverageReplication(2017)
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg)
}

func TestStorage_AverageReplication_NoCountedTiers(t *testing.T) {
	p := loadFixture(t, testutil.MultiYear)
	p.ReplicaCountExcludedTiers = []string{"RAW", "GENSIM", "AOD", "USER"}
	m := storageFor(p)

	_, err := m.AverageReplication(2017)
	assert.True(t, errors.Is(err, ErrDegenerateRatio))
}

func TestStorage_LegacyDiskDefaultsWithinHorizon(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	assert.Equal(t, 25.0, m.LegacyDisk[2017])
	assert.Equal(t, 10.0, m.LegacyDisk[2018])
	assert.Equal(t, 5.0, m.LegacyDisk[2019])
	assert.Equal(t, 0.0, m.LegacyDisk[2021])
	_, ok := m.LegacyDisk[2016]
	assert.False(t, ok)
}

func TestStorage_LegacyDiskConfigured(t *testing.T) {
	p := loadFixture(t, testutil.MultiYear)
	p.LegacyDisk = map[int]float64{2017: 7}
	m := storageFor(p)

	assert.Equal(t, 7.0, m.LegacyDisk[2017])
	assert.Equal(t, 0.0, m.LegacyDisk[2018])
}

func TestStorage_ByYearAndByTierAgree(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	for _, o := range []Occupancy{m.Disk, m.Tape} {
		for i, y := range m.Years() {
			byYear := floats.Sum(mat.Row(nil, i, o.ByYear))
			testutil.AssertFloat64Equal(t, "row total", byYear, m.Total(o, y), 1e-9)
		}
	}
}

func TestStorage_NothingConsumedBeforeProduction(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))

	r, c := m.Disk.ByYear.Dims()
	for i := range r {
		for j := i + 1; j < c; j++ {
			assert.Equal(t, 0.0, m.Disk.ByYear.At(i, j))
		}
	}
}

func TestStorage_TotalOutsideHorizonIsZero(t *testing.T) {
	m := storageFor(loadFixture(t, testutil.MultiYear))
	assert.Equal(t, 0.0, m.Total(m.Disk, 2040))
}

func TestSortTiers_KnownOrderThenAlphabetical(t *testing.T) {
	tiers := []string{"ZZZ", "USER", "AOD", "Ops space", "ABC", "RAW"}
	SortTiers(tiers)
	assert.Equal(t, []string{"Ops space", "RAW", "AOD", "USER", "ABC", "ZZZ"}, tiers)
}
