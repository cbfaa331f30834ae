package model

import (
	"errors"
	"fmt"
)

var ErrInvalidDestination = errors.New("model: invalid destination")

// Destination names where an inbox item is sent when it is processed.
type Destination string

const (
	DestinationNextAction Destination = "nextaction"
	DestinationProject    Destination = "project"
	DestinationWaiting    Destination = "waiting"
	DestinationSomeday    Destination = "someday"
	DestinationDone       Destination = "done"
)

var Destinations = []Destination{
	DestinationNextAction,
	DestinationProject,
	DestinationWaiting,
	DestinationSomeday,
	DestinationDone,
}

func (d Destination) IsValid() bool {
	_, ok := d.status()
	return ok
}

// Status returns the task status a destination assigns.
func (d Destination) Status() Status {
	s, _ := d.status()
	return s
}

func (d Destination) status() (Status, bool) {
	switch d {
	case DestinationNextAction:
		return StatusNext, true
	case DestinationProject:
		return StatusProject, true
	case DestinationWaiting:
		return StatusWaiting, true
	case DestinationSomeday:
		return StatusSomeday, true
	case DestinationDone:
		return StatusDone, true
	default:
		return "", false
	}
}

// ParseDestination matches case-sensitively, the way users type it after !gtd process.
func ParseDestination(raw string) (Destination, error) {
	d := Destination(raw)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDestination, raw)
	}
	return d, nil
}
