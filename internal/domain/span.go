package domain

import "fmt"

// Result of asking how many stops of a line lie within a selected span.
// AllStopIDs is the full ordered sequence of the line; CoveredCount is
// owned by the backend and is not recomputed locally.
type StopSpan struct {
	AllStopIDs   []string
	CoveredCount int
}

// Percentage returns CoveredCount / len(AllStopIDs) as a whole percent,
// rounding halves up (1 of 8 stops is 12.5% and reports 13).
//
// The computation is done in integer arithmetic so the .5 boundary is exact.
// A covered count outside [0, total] is a backend contract violation and is
// reported as a ComputationError instead of being clamped.
func (s StopSpan) Percentage() (int, error) {
	total := len(s.AllStopIDs)
	if total == 0 {
		return 0, &ComputationError{Reason: "empty stop sequence"}
	}

	covered := s.CoveredCount
	if covered < 0 || covered > total {
		return 0, &ComputationError{
			Reason: fmt.Sprintf("percentage out of range: covered=%d total=%d", covered, total),
		}
	}

	return (200*covered + total) / (2 * total), nil
}
