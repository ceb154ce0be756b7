// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// State is the lifecycle state of an issue as reported by the issue source.
// Values outside the two known states are kept verbatim and rendered with a
// fallback color rather than rejected.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ParseState normalizes a raw state string from the issue source.
func ParseState(raw string) State {
	return State(strings.ToLower(raw))
}

// Color returns the display color for the state. The second return value is
// false when the state is unknown and the fallback color was used.
func (s State) Color() (Color, bool) {
	switch s {
	case StateOpen:
		return ColorOpen, true
	case StateClosed:
		return ColorClosed, true
	default:
		return ColorFallback, false
	}
}

// Issue is an immutable issue record decoded from the issue source.
// ClosedAt is nil for issues that have never been closed.
type Issue struct {
	Number    int
	Title     string
	State     State
	CreatedAt time.Time
	ClosedAt  *time.Time
	Author    string
	Labels    []string
	URL       string
}

// TimelinePoint is one snapshot of the running issue counters, keyed by the
// timestamp of the event that produced it. Delta records which event type
// advanced the counters: +1 for a creation, -1 for a closure.
type TimelinePoint struct {
	Time    time.Time
	Delta   int
	Open    int
	Created int
	Closed  int
}
