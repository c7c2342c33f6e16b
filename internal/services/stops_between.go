package services

import (
	"bussd-route-service/internal/domain"
	"errors"
)

var ErrStopNotOnRoute = errors.New("one or both stop ids not found on this route")

// Position of two stops within a line's sequence.
type SpanResult struct {
	AllStopIDs []string
	FromIndex  int
	ToIndex    int
	// Stops strictly between the two, in sequence order.
	Between []string
	// Distance in stops between the two, regardless of direction of travel.
	Count int
}

// SpanBetween locates fromID and toID in stops and measures the span between them.
func SpanBetween(stops []domain.StopReference, fromID, toID string) (SpanResult, error) {
	ids := make([]string, 0, len(stops))
	from, to := -1, -1
	for i, s := range stops {
		ids = append(ids, s.ID)
		if from < 0 && s.ID == fromID {
			from = i
		}
		if to < 0 && s.ID == toID {
			to = i
		}
	}

	if from < 0 || to < 0 {
		return SpanResult{}, ErrStopNotOnRoute
	}

	lo, hi := min(from, to), max(from, to)
	between := make([]string, 0, max(hi-lo-1, 0))
	if hi > lo {
		between = append(between, ids[lo+1:hi]...)
	}

	return SpanResult{
		AllStopIDs: ids,
		FromIndex:  from,
		ToIndex:    to,
		Between:    between,
		Count:      hi - lo,
	}, nil
}
