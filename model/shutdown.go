package model

// Calendar answers shutdown questions for a fixed set of shutdown years.
type Calendar struct {
	shutdown map[int]bool
}

// NewCalendar builds a calendar from the configured shutdown years.
func NewCalendar(years []int) Calendar {
	set := make(map[int]bool, len(years))
	for _, y := range years {
		set[y] = true
	}
	return Calendar{shutdown: set}
}

// InShutdown reports whether year is a shutdown year and, if so, the most
// recent earlier year that was not. Chained shutdowns are walked through.
// For a running year lastActive is the year itself.
func (c Calendar) InShutdown(year int) (bool, int) {
	if !c.shutdown[year] {
		return false, year
	}
	last := year - 1
	for c.shutdown[last] {
		last--
	}
	return true, last
}

// IsShutdownEntry reports whether year starts a shutdown period.
func (c Calendar) IsShutdownEntry(year int) bool {
	return c.shutdown[year] && !c.shutdown[year-1]
}
