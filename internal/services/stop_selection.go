package services

import (
	"bussd-route-service/internal/domain"
	"fmt"
	"strings"
)

// StopSelection is the caller-owned state of one add or edit session:
// the line, its fetched stops, and the chosen start and end stops.
//
// Once a start or end stop is set, by seeding or by the user, fetching the
// same line again leaves it alone. Fetching a different line clears both
// and falls back to that line's first and last stops.
type StopSelection struct {
	RouteID     string
	LineID      string
	StartStopID string
	EndStopID   string

	stops domain.LineStops
}

// NewStopSelection starts an empty selection for the add flow.
func NewStopSelection() *StopSelection {
	return &StopSelection{}
}

// NewStopSelectionFromRecord seeds the selection for the edit flow.
func NewStopSelectionFromRecord(rec domain.RouteProgressRecord) *StopSelection {
	return &StopSelection{
		RouteID:     rec.ID,
		LineID:      rec.RouteIdentifier,
		StartStopID: rec.StartStopID,
		EndStopID:   rec.EndStopID,
	}
}

// Stops returns the most recently applied stop list.
func (s *StopSelection) Stops() domain.LineStops {
	return s.stops
}

// Apply records freshly fetched stops and fills any empty start or end.
func (s *StopSelection) Apply(ls domain.LineStops) {
	if s.LineID != "" && !strings.EqualFold(s.LineID, ls.LineID) {
		s.StartStopID = ""
		s.EndStopID = ""
	}

	s.LineID = ls.LineID
	s.stops = ls

	if s.StartStopID == "" {
		s.StartStopID = ls.First().ID
	}
	if s.EndStopID == "" {
		s.EndStopID = ls.Last().ID
	}
}

func (s *StopSelection) ChooseStart(stopID string) error {
	if err := s.checkStop(stopID); err != nil {
		return err
	}
	s.StartStopID = stopID
	return nil
}

func (s *StopSelection) ChooseEnd(stopID string) error {
	if err := s.checkStop(stopID); err != nil {
		return err
	}
	s.EndStopID = stopID
	return nil
}

// checkStop rejects ids that are not on the fetched line.
// Before the first fetch any non-empty id is accepted.
func (s *StopSelection) checkStop(stopID string) error {
	if strings.TrimSpace(stopID) == "" {
		return &domain.ValidationError{Reason: "stop id is required"}
	}
	if len(s.stops.Stops) > 0 && !s.stops.Contains(stopID) {
		return &domain.ValidationError{
			Reason: fmt.Sprintf("stop %q is not on route %s", stopID, s.stops.LineID),
		}
	}
	return nil
}

// Submission builds the workflow input from the current selection.
func (s *StopSelection) Submission(userID, userEmail string) RouteSubmission {
	return RouteSubmission{
		RouteID:     s.RouteID,
		LineID:      s.LineID,
		StartStopID: s.StartStopID,
		EndStopID:   s.EndStopID,
		UserID:      userID,
		UserEmail:   userEmail,
	}
}
