package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Ticker is the slice of QuizService the scheduler drives.
type Ticker interface {
	TickAll(ctx context.Context) int
}

// Scheduler feeds one tick per interval to every live session.
type Scheduler struct {
	target   Ticker
	interval time.Duration
	log      logrus.FieldLogger
	// newTicker is swapped in tests.
	newTicker func(time.Duration) (<-chan time.Time, func())
}

func NewScheduler(target Ticker, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		log:      log,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run ticks until ctx is cancelled. It always returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	ticks, stop := s.newTicker(s.interval)
	defer stop()
	s.log.WithField("interval", s.interval).Info("session scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("session scheduler stopped")
			return ctx.Err()
		case <-ticks:
			if n := s.target.TickAll(ctx); n > 0 {
				s.log.WithField("expired", n).Debug("sessions ran out of time")
			}
		}
	}
}
