package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepcomp/resource-model/model/capacity"
	"github.com/hepcomp/resource-model/model/internal/testutil"
)

func TestRun_MultiYear_AllTablesComplete(t *testing.T) {
	p := loadFixture(t, testutil.MultiYear)

	pr, err := Run(p)
	require.NoError(t, err)

	assert.Len(t, pr.Events.Table(), len(p.Years()))
	assert.Len(t, pr.Aggregate.Required, len(p.Years()))
	rows, cols := pr.Storage.Disk.ByTier.Dims()
	assert.Equal(t, len(p.Years()), rows)
	assert.Equal(t, len(pr.Storage.TierColumns), cols)
	for _, res := range capacity.Resources {
		assert.Len(t, pr.Capacity.Ledger[res], len(p.Years()), res)
	}
	assert.Len(t, pr.Capacity.Simple[capacity.CPU], len(p.Years()))
}

func TestProjectCapacity_CPUTimeIsFullYearOfCapacity(t *testing.T) {
	p := loadFixture(t, testutil.MultiYear)

	caps, err := ProjectCapacity(p)
	require.NoError(t, err)

	assert.Equal(t, 1.5e6, caps.Ledger[capacity.CPU][2017])
	for _, y := range p.Years() {
		testutil.AssertFloat64Equal(t, "ledger time", caps.Ledger[capacity.CPU][y]*SecondsPerYear, caps.CPUTimeLedger[y], 1e-12)
		testutil.AssertFloat64Equal(t, "simple time", caps.Simple[capacity.CPU][y]*SecondsPerYear, caps.CPUTimeSimple[y], 1e-12)
	}
	// only cpu has a simple model unless configured
	_, ok := caps.Simple[capacity.Disk]
	assert.False(t, ok)
}

func TestProjectCapacity_ImprovementFactorPerResource(t *testing.T) {
	p := loadFixture(t, testutil.MultiYear)
	caps, err := ProjectCapacity(p)
	require.NoError(t, err)

	// 2018 purchase is the 2017 delta compounded once by the resource factor
	lifetime := float64(p.CapacityModel.DiskLifetime)
	want := 1.0e17 - 1.0e17/lifetime + 2.0e16*1.15
	testutil.AssertFloat64Equal(t, "disk 2018", want, caps.Ledger[capacity.Disk][2018], 1e-12)
}

func TestProjection_SingleYearUtilization(t *testing.T) {
	p := loadFixture(t, testutil.SingleYear)
	pr, err := Run(p)
	require.NoError(t, err)

	u, err := pr.CPUUtilization(2020)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "cpu", pr.Aggregate.Required[2020]/2.0e7, u, 1e-12)

	// disk: 15768000000 one-byte events plus no legacy usage in 2020
	u, err = pr.StorageUtilization(capacity.Disk, 2020)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "disk", 15768000000.0/1.0e17, u, 1e-9)

	u, err = pr.StorageUtilization(capacity.Tape, 2020)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "tape", 15768000000.0/2.0e17, u, 1e-9)
}

func TestProjection_DiskUtilizationIncludesLegacy(t *testing.T) {
	p := loadFixture(t, testutil.MultiYear)
	pr, err := Run(p)
	require.NoError(t, err)

	u, err := pr.StorageUtilization(capacity.Disk, 2017)
	require.NoError(t, err)
	want := (pr.Storage.Total(pr.Storage.Disk, 2017) + 25) * Peta / pr.Capacity.Ledger[capacity.Disk][2017]
	testutil.AssertFloat64Equal(t, "disk", want, u, 1e-9)
}

// sparseCapacity covers only the years it holds.
type sparseCapacity capacity.Series

func (s sparseCapacity) Project([]int) (capacity.Series, error) {
	return capacity.Series(s), nil
}

func TestProjectSeries_RejectsMissingYears(t *testing.T) {
	// GIVEN a capacity model that skips 2019
	m := sparseCapacity{2018: 1, 2020: 3}

	// WHEN three years are requested
	_, err := projectSeries(m, []int{2018, 2019, 2020})

	// THEN the gap is reported
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2019")

	got, err := projectSeries(m, []int{2018, 2020})
	require.NoError(t, err)
	assert.Equal(t, capacity.Series{2018: 1, 2020: 3}, got)
}
