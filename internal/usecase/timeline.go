// Package usecase contains the business logic of the application.
package usecase

import (
	"sort"
	"time"

	"github.com/Wumpf/issue-explorer/internal/domain"
)

// timelineEvent is an ephemeral (timestamp, delta) pair derived from an
// issue: +1 for its creation, -1 for its closure.
type timelineEvent struct {
	at    time.Time
	delta int
}

// BuildTimeline folds a set of issues into a chronological sequence of
// running-counter snapshots, one per creation or closure event.
//
// Events are ordered by timestamp; at equal timestamps, creations are
// processed before closures, so the order is deterministic regardless of
// input order. An issue whose closure predates its creation is folded in
// verbatim, which makes the open counter go transiently negative; upstream
// data quality is not second-guessed here.
func BuildTimeline(issues []domain.Issue) []domain.TimelinePoint {
	events := make([]timelineEvent, 0, 2*len(issues))
	for _, issue := range issues {
		events = append(events, timelineEvent{at: issue.CreatedAt, delta: +1})
		if issue.ClosedAt != nil {
			events = append(events, timelineEvent{at: *issue.ClosedAt, delta: -1})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].delta > events[j].delta
	})

	var open, created, closed int
	points := make([]domain.TimelinePoint, 0, len(events))
	for _, ev := range events {
		open += ev.delta
		if ev.delta == +1 {
			created++
		} else {
			closed++
		}
		points = append(points, domain.TimelinePoint{
			Time:    ev.at,
			Delta:   ev.delta,
			Open:    open,
			Created: created,
			Closed:  closed,
		})
	}
	return points
}
