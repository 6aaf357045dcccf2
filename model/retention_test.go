package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRetentionPolicy_ValidNames(t *testing.T) {
	spec := StorageModelSpec{}
	assert.IsType(t, &perAge{}, NewRetentionPolicy("", spec))
	assert.IsType(t, &perAge{}, NewRetentionPolicy(TapePolicyPerAge, spec))
	assert.IsType(t, &pinnedTape{}, NewRetentionPolicy(TapePolicyPinned, spec))
}

func TestNewRetentionPolicy_UnknownName_Panics(t *testing.T) {
	assert.Panics(t, func() { NewRetentionPolicy("forever", StorageModelSpec{}) })
}

func TestRetentionPolicy_CopiesAreVersionsTimesReplicas(t *testing.T) {
	// GIVEN two versions in the first year and one after
	spec := StorageModelSpec{
		Versions:     map[string][]float64{"AOD": {2, 3}},
		DiskReplicas: map[string][]float64{"AOD": {2, 1, 0}},
		TapeReplicas: map[string][]float64{"AOD": {1, 1}},
	}

	perAgePolicy := NewRetentionPolicy(TapePolicyPerAge, spec)
	pinned := NewRetentionPolicy(TapePolicyPinned, spec)

	// THEN disk copies stop at the shorter sequence for both policies
	assert.Equal(t, []float64{4, 3}, perAgePolicy.DiskCopies("AOD"))
	assert.Equal(t, []float64{4, 3}, pinned.DiskCopies("AOD"))

	// AND tape copies differ: per-age follows the version count, pinned keeps
	// the first-year versions
	assert.Equal(t, []float64{2, 3}, perAgePolicy.TapeCopies("AOD"))
	assert.Equal(t, []float64{2, 2}, pinned.TapeCopies("AOD"))
}

func TestRetentionPolicy_UnknownTierHasNoCopies(t *testing.T) {
	p := NewRetentionPolicy(TapePolicyPinned, StorageModelSpec{})
	assert.Empty(t, p.DiskCopies("RAW"))
	assert.Empty(t, p.TapeCopies("RAW"))
}

func TestCopiesAt(t *testing.T) {
	seq := []float64{4, 1, 0.5}
	cases := []struct {
		name string
		seq  []float64
		age  int
		want float64
	}{
		{"first year", seq, 0, 4},
		{"inside", seq, 1, 1},
		{"past end holds last", seq, 7, 0.5},
		{"negative reads first", seq, -1, 4},
		{"empty", nil, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, copiesAt(tc.seq, tc.age))
		})
	}
}

func TestRetentionAge_FrozenDuringShutdownUntilSequenceEnds(t *testing.T) {
	seq := []float64{4, 1}

	// 2018 data seen from 2019, shutdown with last active year 2018
	assert.Equal(t, 0, retentionAge(seq, 2019, 2018, true, 2018))
	// seen from 2020: already past the sequence, no freeze
	assert.Equal(t, 2, retentionAge(seq, 2020, 2018, true, 2018))
	// running year
	assert.Equal(t, 1, retentionAge(seq, 2019, 2018, false, 2019))
}
