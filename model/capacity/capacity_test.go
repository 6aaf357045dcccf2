package capacity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepcomp/resource-model/model/ramp"
)

func yearRange(from, to int) []int {
	var years []int
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}

func TestLedger_ZeroDeltas_StrictlyDecreasesWhileRetiring(t *testing.T) {
	// GIVEN a 100-unit start bought evenly over 5 years and no new purchases
	spec := LedgerSpec{Year: 2020, Start: 100, Lifetime: 5, Delta: ramp.Ramp{2020: 0}}
	m := NewLedgerModel(spec, 1.2)

	// WHEN projected across the retirement window
	got, err := m.Project(yearRange(2020, 2025))
	require.NoError(t, err)

	// THEN capacity drops by one purchase every year until nothing is left
	for y := 2021; y <= 2025; y++ {
		assert.Less(t, got[y], got[y-1], "year %d", y)
		assert.InDelta(t, got[y-1]-20, got[y], 1e-9, "year %d", y)
	}
	assert.InDelta(t, 0, got[2025], 1e-9)
}

func TestLedger_DeltaCompoundedFromControlYear(t *testing.T) {
	// GIVEN a delta of 10 defined from 2021 and a 1.1 improvement factor
	spec := LedgerSpec{Year: 2020, Start: 40, Lifetime: 4, Delta: ramp.Ramp{2021: 10}}
	m := NewLedgerModel(spec, 1.1)

	added := m.Purchases(2023)

	// THEN the purchase grows with the years since the control point
	assert.InDelta(t, 10, added[2021], 1e-9)
	assert.InDelta(t, 11, added[2022], 1e-9)
	assert.InDelta(t, 12.1, added[2023], 1e-9)
	// AND the synthetic history explains the start
	assert.InDelta(t, 10, added[2017], 1e-9)
	assert.InDelta(t, 10, added[2020], 1e-9)
}

func TestLedger_RetiresPurchaseAfterLifetime(t *testing.T) {
	spec := LedgerSpec{Year: 2020, Start: 30, Lifetime: 3, Delta: ramp.Ramp{2021: 6}}
	got, err := NewLedgerModel(spec, 1.0).Project(yearRange(2020, 2024))
	require.NoError(t, err)

	// 2021: +6 -10, 2022: +6 -10, 2023: +6 -10, 2024: +6 -6 (the 2021 purchase)
	assert.InDelta(t, 26, got[2021], 1e-9)
	assert.InDelta(t, 22, got[2022], 1e-9)
	assert.InDelta(t, 18, got[2023], 1e-9)
	assert.InDelta(t, 18, got[2024], 1e-9)
}

func TestLedger_NoDeltaBeforeFirstControlPoint(t *testing.T) {
	spec := LedgerSpec{Year: 2020, Start: 10, Lifetime: 10, Delta: ramp.Ramp{2030: 5}}
	added := NewLedgerModel(spec, 1.0).Purchases(2025)
	assert.Equal(t, 0.0, added[2024])
}

func TestLedger_YearBeforeStart_Errors(t *testing.T) {
	spec := LedgerSpec{Year: 2020, Start: 10, Lifetime: 5, Delta: ramp.Ramp{2020: 1}}
	_, err := NewLedgerModel(spec, 1.0).Project([]int{2019, 2020})
	assert.ErrorIs(t, err, ramp.ErrUndefinedRange)
}

func TestLedger_NonPositiveLifetime_Errors(t *testing.T) {
	spec := LedgerSpec{Year: 2020, Start: 10, Lifetime: 0}
	_, err := NewLedgerModel(spec, 1.0).Project([]int{2020})
	assert.Error(t, err)
}

func TestSimple_DefaultCPUBaseline(t *testing.T) {
	// GIVEN the default cpu baseline with a flat improvement factor
	m := NewSimpleModel(DefaultCPUSimple, 1.0)

	got, err := m.Project(yearRange(2017, 2021))
	require.NoError(t, err)

	// THEN each year retires 5% and adds the increment for that year
	want := 1.4e6
	for y := 2017; y <= 2021; y++ {
		inc := 300e3
		if y >= 2020 {
			inc = 600e3
		}
		want = want*0.95 + inc
		assert.InDelta(t, want, got[y], 1e-6, "year %d", y)
	}
}

func TestSimple_IncrementImprovesFromReferenceYear(t *testing.T) {
	spec := SimpleSpec{BaseYear: 2016, Base: 0, RetirementRate: 0, Increment: 100, ReferenceYear: 2017}
	got, err := NewSimpleModel(spec, 1.2).Project([]int{2017, 2018})
	require.NoError(t, err)

	assert.InDelta(t, 100, got[2017], 1e-9)
	assert.InDelta(t, 100+100*1.2, got[2018], 1e-9)
}

func TestSimple_YearsAtOrBeforeBaseHoldBase(t *testing.T) {
	got, err := NewSimpleModel(DefaultCPUSimple, 1.1).Project([]int{2015, 2016})
	require.NoError(t, err)
	assert.Equal(t, 1.4e6, got[2015])
	assert.Equal(t, 1.4e6, got[2016])
}

func TestSeries_Scale(t *testing.T) {
	s := Series{2020: 2, 2021: 3}
	got := s.Scale(10)
	assert.Equal(t, Series{2020: 20, 2021: 30}, got)
	assert.Equal(t, 2.0, s[2020], "original must not change")
	assert.False(t, math.IsNaN(got[2021]))
}
