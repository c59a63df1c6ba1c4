package app

import (
	"fmt"

	"timed-quiz-service/internal/domain"
)

const (
	// DefaultDurationSeconds is the countdown a session starts with.
	DefaultDurationSeconds = 60
	warningThreshold       = 10
	dangerThreshold        = 5
)

// Timer is a countdown advanced by explicit Tick calls, one per elapsed second.
// It owns no goroutine; a Scheduler (or a test) drives it.
// Timer is not safe for concurrent use; Session serializes access.
type Timer struct {
	defaultSeconds int
	remaining      int
	running        bool
	onExpire       func()
}

// NewTimer builds a stopped timer. defaultSeconds <= 0 falls back to 60.
func NewTimer(defaultSeconds int, onExpire func()) *Timer {
	if defaultSeconds <= 0 {
		defaultSeconds = DefaultDurationSeconds
	}
	return &Timer{
		defaultSeconds: defaultSeconds,
		remaining:      defaultSeconds,
		onExpire:       onExpire,
	}
}

// Start (re)starts the countdown, replacing any countdown already running.
func (t *Timer) Start(seconds int) {
	if seconds <= 0 {
		seconds = t.defaultSeconds
	}
	t.remaining = seconds
	t.running = true
}

// Tick advances the countdown by one second. When it hits zero the timer
// stops itself and fires the expiry callback once.
func (t *Timer) Tick() {
	if !t.running {
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.running = false
		if t.onExpire != nil {
			t.onExpire()
		}
	}
}

// Stop cancels the countdown. Safe to call when already stopped.
func (t *Timer) Stop() {
	t.running = false
}

// Reset stops the timer and restores the default duration without starting it.
func (t *Timer) Reset() {
	t.Stop()
	t.remaining = t.defaultSeconds
}

func (t *Timer) Remaining() int {
	return t.remaining
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) State() domain.TimerState {
	return domain.TimerState{Remaining: t.remaining, Running: t.running}
}

// Level reports the display bucket of the remaining time.
func (t *Timer) Level() domain.TimerLevel {
	return LevelFor(t.remaining)
}

// LevelFor buckets remaining seconds: danger at 5s or less, warning at 10s or less.
func LevelFor(remaining int) domain.TimerLevel {
	switch {
	case remaining <= dangerThreshold:
		return domain.TimerDanger
	case remaining <= warningThreshold:
		return domain.TimerWarning
	default:
		return domain.TimerNormal
	}
}

// FormatRemaining renders the countdown for text output.
func FormatRemaining(seconds int) string {
	return fmt.Sprintf("Time Left: %ds", seconds)
}
