// Package classify decides which cached tasks a view shows and summarises them.
//
// Every function here is pure: the current time is always passed in, and bad
// data from the network degrades (missing time means end of day, an unparseable
// date is never overdue and sorts last) instead of failing.
package classify

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BuzzLyutic/study-planner/internal/model"
)

var ErrUnknownFilter = errors.New("unknown filter")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"15:04:05.999999999",
}

// ParseFilter maps a user-supplied name onto a Filter. An empty name is "all".
func ParseFilter(s string) (model.Filter, error) {
	f := model.Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return model.FilterAll, nil
	case model.FilterAll, model.FilterPending, model.FilterCompleted, model.FilterOverdue:
		return f, nil
	}
	return model.FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Deadline returns the effective deadline of t in loc. Without a usable
// due_time the deadline is the last instant of the due day. ok is false when
// due_date cannot be parsed.
func Deadline(t model.Task, loc *time.Location) (deadline time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d, ok := parseDate(t.DueDate)
	if !ok {
		return time.Time{}, false
	}
	if t.HasDueTime() {
		if hh, mm, ss, ok := parseClock(*t.DueTime); ok {
			return time.Date(y, m, d, hh, mm, ss, 0, loc), true
		}
	}
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond), true
}

// IsOverdue reports whether t is pending and its deadline is before now.
// Deadlines are evaluated in now's location.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.Status != model.StatusPending {
		return false
	}
	deadline, ok := Deadline(t, now.Location())
	return ok && deadline.Before(now)
}

// Classify returns the tasks visible under filter, in input order.
//
// "all" hides completed tasks. Unknown filters behave like "all".
func Classify(tasks []model.Task, filter model.Filter, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, filter, now) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t model.Task, filter model.Filter, now time.Time) bool {
	switch filter {
	case model.FilterPending:
		return t.Status == model.StatusPending
	case model.FilterCompleted:
		return t.Status == model.StatusCompleted
	case model.FilterOverdue:
		return IsOverdue(t, now)
	default:
		return t.Status != model.StatusCompleted
	}
}

// SortByDeadline returns a copy of tasks ordered by effective deadline.
// Ties keep their input order; unparseable dates go last.
func SortByDeadline(tasks []model.Task, loc *time.Location) []model.Task {
	type keyed struct {
		task     model.Task
		deadline time.Time
		ok       bool
	}
	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		d, ok := Deadline(t, loc)
		ks[i] = keyed{task: t, deadline: d, ok: ok}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			return a.deadline.Compare(b.deadline)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})
	out := make([]model.Task, len(ks))
	for i, k := range ks {
		out[i] = k.task
	}
	return out
}

// Aggregate counts tasks by status. The productivity score is the completed
// share in percent, rounded half up, and 0 for an empty list.
func Aggregate(tasks []model.Task) model.Stats {
	s := model.Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusCompleted:
			s.Completed++
		case model.StatusPending:
			s.Pending++
		}
	}
	s.ProductivityScore = Percent(s.Completed, s.Total)
	return s
}

// Percent is round(100*part/total) with halves rounded up; 0 when total <= 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

// ValidDueDate reports whether s is a due_date Deadline understands.
func ValidDueDate(s string) bool {
	_, _, _, ok := parseDate(s)
	return ok
}

// ValidDueTime reports whether s is a due_time Deadline understands.
func ValidDueTime(s string) bool {
	_, _, _, ok := parseClock(s)
	return ok
}

func parseDate(s string) (int, time.Month, int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return y, m, d, true
		}
	}
	return 0, 0, 0, false
}

func parseClock(s string) (int, int, int, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), t.Second(), true
		}
	}
	return 0, 0, 0, false
}
