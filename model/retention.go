package model

import "fmt"

// Tape retention policy names.
const (
	TapePolicyPerAge = "per_age"
	TapePolicyPinned = "pinned"
)

// ValidTapePolicies is the set of recognized tape retention policy names.
var ValidTapePolicies = map[string]bool{"": true, TapePolicyPerAge: true, TapePolicyPinned: true}

// IsValidTapePolicy returns true if name is a recognized tape policy.
func IsValidTapePolicy(name string) bool { return ValidTapePolicies[name] }

// RetentionPolicy yields copies kept per tier, indexed by age in years since
// production. Copies are versions times replicas.
type RetentionPolicy interface {
	DiskCopies(tier string) []float64
	TapeCopies(tier string) []float64
}

// NewRetentionPolicy creates a RetentionPolicy by tape policy name.
// Empty string defaults to per_age. Panics on unrecognized names.
func NewRetentionPolicy(name string, spec StorageModelSpec) RetentionPolicy {
	if !IsValidTapePolicy(name) {
		panic(fmt.Sprintf("unknown tape policy %q", name))
	}
	switch name {
	case TapePolicyPinned:
		return &pinnedTape{spec: spec}
	default:
		return &perAge{spec: spec}
	}
}

// perAge keeps versions[a]*replicas[a] copies on disk and tape.
type perAge struct {
	spec StorageModelSpec
}

func (p *perAge) DiskCopies(tier string) []float64 {
	return zipMultiply(p.spec.Versions[tier], p.spec.DiskReplicas[tier])
}

func (p *perAge) TapeCopies(tier string) []float64 {
	return zipMultiply(p.spec.Versions[tier], p.spec.TapeReplicas[tier])
}

// pinnedTape writes the first-year version count to tape for every age.
type pinnedTape struct {
	spec StorageModelSpec
}

func (p *pinnedTape) DiskCopies(tier string) []float64 {
	return zipMultiply(p.spec.Versions[tier], p.spec.DiskReplicas[tier])
}

func (p *pinnedTape) TapeCopies(tier string) []float64 {
	versions := p.spec.Versions[tier]
	replicas := p.spec.TapeReplicas[tier]
	if len(versions) == 0 || len(replicas) == 0 {
		return nil
	}
	out := make([]float64, len(replicas))
	for i, r := range replicas {
		out[i] = versions[0] * r
	}
	return out
}

// zipMultiply multiplies pairwise up to the shorter length.
func zipMultiply(a, b []float64) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := range n {
		out[i] = a[i] * b[i]
	}
	return out
}

// copiesAt returns the copies for age, holding the last value past the end of
// the sequence. Negative ages read age 0; an empty sequence means no copies.
func copiesAt(seq []float64, age int) float64 {
	if len(seq) == 0 {
		return 0
	}
	if age < 0 {
		age = 0
	}
	if age >= len(seq) {
		return seq[len(seq)-1]
	}
	return seq[age]
}
