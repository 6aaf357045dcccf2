package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrConfiguration matches any *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotApplicable marks a performance figure that the model does not
	// define for a tier, origin or kind. Callers count it as zero.
	ErrNotApplicable = errors.New("not applicable")

	// ErrDegenerateRatio is returned when a ratio would divide by zero.
	ErrDegenerateRatio = errors.New("degenerate ratio")
)

// ConfigurationError lists every problem found while loading parameters.
type ConfigurationError struct {
	Source   string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%v: %s", ErrConfiguration, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("%v (%s): %s", ErrConfiguration, e.Source, strings.Join(e.Problems, "; "))
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(source string, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Source: source, Problems: []string{fmt.Sprintf(format, args...)}}
}

// Ratio divides num by den, refusing zero or non-finite denominators.
func Ratio(num, den float64) (float64, error) {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0, fmt.Errorf("%w: %g / %g", ErrDegenerateRatio, num, den)
	}
	return num / den, nil
}
