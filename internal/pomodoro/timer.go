// Package pomodoro implements the work/break countdown as a plain state
// machine. It owns no clock: the caller invokes Tick once per elapsed second.
package pomodoro

import (
	"fmt"
	"time"
)

const (
	DefaultWork  = 25 * time.Minute
	DefaultBreak = 5 * time.Minute
)

type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

func (p Phase) next() Phase {
	if p == PhaseWork {
		return PhaseBreak
	}
	return PhaseWork
}

type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusComplete Status = "complete"
)

type EventKind string

const (
	EventNone          EventKind = "none"
	EventStarted       EventKind = "started"
	EventResumed       EventKind = "resumed"
	EventPaused        EventKind = "paused"
	EventReset         EventKind = "reset"
	EventTicked        EventKind = "ticked"
	EventPhaseComplete EventKind = "phase_complete"
)

type Config struct {
	Work  time.Duration
	Break time.Duration
}

// State is a snapshot of the timer.
type State struct {
	RemainingSeconds  int    `json:"remaining_seconds"`
	Phase             Phase  `json:"phase"`
	Status            Status `json:"status"`
	Running           bool   `json:"running"`
	SessionsCompleted int    `json:"sessions_completed"`
}

// Event describes what a command did. Kind is EventNone for no-ops.
// For EventPhaseComplete, Finished is the phase that just ended.
type Event struct {
	Kind     EventKind `json:"kind"`
	Finished Phase     `json:"finished,omitempty"`
	State    State     `json:"state"`
}

type Timer struct {
	workSeconds  int
	breakSeconds int

	remaining int
	phase     Phase
	status    Status
	sessions  int
}

// New returns an idle timer in the work phase. Durations below one second
// fall back to the defaults.
func New(cfg Config) *Timer {
	t := &Timer{
		workSeconds:  seconds(cfg.Work, DefaultWork),
		breakSeconds: seconds(cfg.Break, DefaultBreak),
		phase:        PhaseWork,
		status:       StatusIdle,
	}
	t.remaining = t.workSeconds
	return t
}

func seconds(d, def time.Duration) int {
	s := int(d / time.Second)
	if s <= 0 {
		return int(def / time.Second)
	}
	return s
}

func (t *Timer) WorkSeconds() int  { return t.workSeconds }
func (t *Timer) BreakSeconds() int { return t.breakSeconds }

func (t *Timer) Snapshot() State {
	return State{
		RemainingSeconds:  t.remaining,
		Phase:             t.phase,
		Status:            t.status,
		Running:           t.status == StatusRunning,
		SessionsCompleted: t.sessions,
	}
}

// Start begins counting down. A paused timer resumes from its remainder;
// an idle or complete one is loaded with the current phase's duration.
// Starting a running timer does nothing.
func (t *Timer) Start() Event {
	switch t.status {
	case StatusRunning:
		return t.event(EventNone)
	case StatusPaused:
		t.status = StatusRunning
		return t.event(EventResumed)
	}
	t.remaining = t.duration(t.phase)
	t.status = StatusRunning
	return t.event(EventStarted)
}

// Tick consumes one second. At zero it completes the phase: a finished work
// phase counts as a session, then the phase flips and the timer stops.
func (t *Timer) Tick() Event {
	if t.status != StatusRunning {
		return t.event(EventNone)
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		return t.event(EventTicked)
	}

	finished := t.phase
	if finished == PhaseWork {
		t.sessions++
	}
	t.phase = finished.next()
	t.status = StatusComplete
	ev := t.event(EventPhaseComplete)
	ev.Finished = finished
	return ev
}

func (t *Timer) Pause() Event {
	if t.status != StatusRunning {
		return t.event(EventNone)
	}
	t.status = StatusPaused
	return t.event(EventPaused)
}

// Reset returns to an idle work phase. The session count is kept.
func (t *Timer) Reset() Event {
	t.phase = PhaseWork
	t.status = StatusIdle
	t.remaining = t.workSeconds
	return t.event(EventReset)
}

func (t *Timer) duration(p Phase) int {
	if p == PhaseBreak {
		return t.breakSeconds
	}
	return t.workSeconds
}

func (t *Timer) event(kind EventKind) Event {
	return Event{Kind: kind, State: t.Snapshot()}
}

// Clock formats seconds as MM:SS.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
