package app_test

import (
	"testing"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

func TestTimerExpiresExactlyOnce(t *testing.T) {
	fired := 0
	timer := app.NewTimer(3, func() { fired++ })
	timer.Start(0)
	if timer.Remaining() != 3 || !timer.Running() {
		t.Fatalf("expected running timer at 3s, got %+v", timer.State())
	}

	for i := 0; i < 10; i++ {
		timer.Tick()
	}
	if fired != 1 {
		t.Fatalf("expected one expiry callback, got %d", fired)
	}
	if timer.Remaining() != 0 || timer.Running() {
		t.Fatalf("expected stopped at zero, got %+v", timer.State())
	}
}

func TestTimerStopAndReset(t *testing.T) {
	fired := false
	timer := app.NewTimer(0, func() { fired = true })
	if timer.Remaining() != app.DefaultDurationSeconds {
		t.Fatalf("expected default 60s, got %d", timer.Remaining())
	}

	timer.Start(5)
	timer.Tick()
	timer.Stop()
	timer.Stop()
	timer.Tick()
	if timer.Remaining() != 4 || fired {
		t.Fatalf("stopped timer should not tick, remaining=%d fired=%v", timer.Remaining(), fired)
	}

	timer.Reset()
	if timer.Remaining() != 60 || timer.Running() {
		t.Fatalf("reset should restore default without starting, got %+v", timer.State())
	}
}

func TestTimerRestartReplacesCountdown(t *testing.T) {
	fired := 0
	timer := app.NewTimer(10, func() { fired++ })
	timer.Start(2)
	timer.Tick()
	timer.Start(5)
	timer.Tick()
	if timer.Remaining() != 4 || fired != 0 {
		t.Fatalf("expected fresh countdown at 4s, got remaining=%d fired=%d", timer.Remaining(), fired)
	}
}

func TestTimerLevels(t *testing.T) {
	cases := map[int]domain.TimerLevel{
		60: domain.TimerNormal,
		11: domain.TimerNormal,
		10: domain.TimerWarning,
		6:  domain.TimerWarning,
		5:  domain.TimerDanger,
		0:  domain.TimerDanger,
	}
	for remaining, want := range cases {
		if got := app.LevelFor(remaining); got != want {
			t.Fatalf("LevelFor(%d) = %s, want %s", remaining, got, want)
		}
	}
	if got := app.FormatRemaining(42); got != "Time Left: 42s" {
		t.Fatalf("unexpected format %q", got)
	}
}
