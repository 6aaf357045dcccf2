// Package testutil provides shared test infrastructure for the projection
// engine: fixture documents from the repository testdata directory and
// floating-point assertion helpers.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Fixture documents under testdata/.
const (
	// SingleYear is a one-year model: 1000 Hz at 50% live time, one RECO
	// tier costing 10 HS06*s and 1 byte per event, no simulation.
	SingleYear = "single_year.json"
	// MultiYear spans 2017-2027 with two shutdowns, two simulation eras,
	// static disk and mixed retention policies.
	MultiYear = "multi_year.json"
)

// TestdataDir resolves the repository testdata directory relative to this
// source file: model/internal/testutil/ -> testdata/.
func TestdataDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// FixturePath returns the absolute path of a fixture document.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(TestdataDir(t), name)
}

// ReadFixture returns the raw bytes of a fixture document.
func ReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(t, name))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", name, err)
	}
	return data
}

// WriteDocument writes content to a file in a per-test temporary directory
// and returns its path. Used for override layers.
func WriteDocument(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write document %s: %v", name, err)
	}
	return path
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
