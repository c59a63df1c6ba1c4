package app

import (
	"context"
	"errors"
	"fmt"

	"timed-quiz-service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	Each(fn func(*Session))
	// Record persists a snapshot after a transition; implementations may treat it as best-effort.
	Record(ctx context.Context, state domain.SessionState)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// QuizService contains the quiz use cases over many concurrent sessions.
type QuizService struct {
	sessions SessionRepository
	banks    BankRepository
	opts     SessionOptions
	newID    func() string
	log      logrus.FieldLogger
}

func NewQuizService(store SessionRepository, banks BankRepository, opts SessionOptions, log logrus.FieldLogger) *QuizService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizService{
		sessions: store,
		banks:    banks,
		opts:     opts,
		newID:    uuid.NewString,
		log:      log,
	}
}

// Create loads the bank and registers a NotStarted session for it.
func (s *QuizService) Create(ctx context.Context, quizID string) (domain.SessionState, error) {
	bank, err := s.banks.GetBank(ctx, quizID)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("cannot load question bank")
		return domain.SessionState{}, err
	}
	session, err := NewSession(s.newID(), bank, s.opts)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Error("question bank failed validation")
		return domain.SessionState{}, err
	}
	s.sessions.Put(session)
	st := session.State()
	s.sessions.Record(ctx, st)
	s.log.WithFields(logrus.Fields{"session_id": st.SessionID, "quiz_id": quizID}).Info("session created")
	return st, nil
}

// Start begins the attempt and the countdown.
func (s *QuizService) Start(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, "start", func(session *Session) error {
		return session.Start()
	})
}

// Restart throws away the current attempt and begins a new one.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, "restart", func(session *Session) error {
		session.Restart()
		return nil
	})
}

func (s *QuizService) SelectAnswer(ctx context.Context, sessionID string, option int) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, "select", func(session *Session) error {
		return session.SelectAnswer(option)
	})
}

func (s *QuizService) GoToQuestion(ctx context.Context, sessionID string, index int) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, "goto", func(session *Session) error {
		return session.GoToQuestion(index)
	})
}

func (s *QuizService) Next(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, "next", func(session *Session) error {
		return session.Next()
	})
}

func (s *QuizService) Previous(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, "previous", func(session *Session) error {
		return session.Previous()
	})
}

// State returns the current snapshot of a session.
func (s *QuizService) State(_ context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return session.State(), nil
}

// CurrentQuestion returns the question under the session cursor with the snapshot it belongs to.
func (s *QuizService) CurrentQuestion(_ context.Context, sessionID string) (domain.Question, domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Question{}, domain.SessionState{}, domain.ErrSessionNotFound
	}
	q, st := session.CurrentView()
	return q, st, nil
}

// QuestionAt returns the question at index, so a queued snapshot can be paired
// with the question it points at rather than the live cursor.
func (s *QuizService) QuestionAt(_ context.Context, sessionID string, index int) (domain.Question, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Question{}, domain.ErrSessionNotFound
	}
	q, ok := session.QuestionAt(index)
	if !ok {
		return domain.Question{}, fmt.Errorf("question %d: %w", index, domain.ErrIndexOutOfRange)
	}
	return q, nil
}

func (s *QuizService) TimeRemaining(_ context.Context, sessionID string) (int, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	return session.TimeRemaining(), nil
}

// Score recomputes the score over the full answer sheet.
func (s *QuizService) Score(_ context.Context, sessionID string) (domain.ScoreResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ScoreResult{}, domain.ErrSessionNotFound
	}
	return session.ComputeScore(), nil
}

// Review annotates every question of the session.
func (s *QuizService) Review(_ context.Context, sessionID string) ([]domain.ReviewItem, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.ComputeReview(), nil
}

// Subscribe returns a channel of snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionState, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Discard drops a session.
func (s *QuizService) Discard(_ context.Context, sessionID string) error {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions.Delete(sessionID)
	s.log.WithField("session_id", sessionID).Info("session discarded")
	return nil
}

// TickAll advances every live session by one second and returns how many
// sessions ran out of time on this tick.
func (s *QuizService) TickAll(ctx context.Context) int {
	var expired []*Session
	s.sessions.Each(func(session *Session) {
		if session.Tick() {
			expired = append(expired, session)
		}
	})
	for _, session := range expired {
		st := session.State()
		s.sessions.Record(ctx, st)
		s.logCompletion(session, "time expired")
	}
	return len(expired)
}

func (s *QuizService) apply(ctx context.Context, sessionID, op string, fn func(*Session) error) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	wasComplete := session.State().IsComplete()
	if err := fn(session); err != nil {
		entry := s.log.WithError(err).WithFields(logrus.Fields{"session_id": sessionID, "op": op})
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrIndexOutOfRange) {
			entry.Debug("operation rejected")
		} else {
			entry.Error("operation failed")
		}
		return session.State(), err
	}
	st := session.State()
	s.sessions.Record(ctx, st)
	if st.IsComplete() && !wasComplete {
		s.logCompletion(session, op)
	}
	return st, nil
}

func (s *QuizService) logCompletion(session *Session, reason string) {
	result := session.ComputeScore()
	s.log.WithFields(logrus.Fields{
		"session_id": session.ID(),
		"quiz_id":    session.QuizID(),
		"reason":     reason,
		"score":      result.Score,
		"total":      result.Total,
		"percentage": result.Percentage,
		"tier":       result.Tier.String(),
	}).Info("session complete")
}
