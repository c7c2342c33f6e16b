package domain

import "strings"

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// Represents a single transit stop along a line.
// The ID is opaque and unique within a line and direction.
type StopReference struct {
	ID          string
	DisplayName string
}

// NewStopReference builds a StopReference, falling back to the id
// when the upstream name is absent or blank.
func NewStopReference(id, name string) StopReference {
	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}
	return StopReference{ID: id, DisplayName: name}
}

// Ordered stop sequence of one line in one direction.
// Order follows the physical sequence of stops along the route.
type LineStops struct {
	LineID    string
	Direction string
	Stops     []StopReference
}

// First stop of the sequence, or the zero value when empty.
func (l LineStops) First() StopReference {
	if len(l.Stops) == 0 {
		return StopReference{}
	}
	return l.Stops[0]
}

// Last stop of the sequence, or the zero value when empty.
func (l LineStops) Last() StopReference {
	if len(l.Stops) == 0 {
		return StopReference{}
	}
	return l.Stops[len(l.Stops)-1]
}

func (l LineStops) Contains(stopID string) bool {
	for _, s := range l.Stops {
		if s.ID == stopID {
			return true
		}
	}
	return false
}

// IDs returns the stop ids in sequence order.
func (l LineStops) IDs() []string {
	ids := make([]string, 0, len(l.Stops))
	for _, s := range l.Stops {
		ids = append(ids, s.ID)
	}
	return ids
}

// StopPoint is the directory entry of one stop: where it is and which lines call there.
type StopPoint struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Modes     []string
	LineIDs   []string
}
