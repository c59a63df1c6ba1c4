package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
)

// Policy decides how a session reacts to calls that are invalid for its
// current phase or carry out-of-range indexes.
type Policy int

const (
	// PolicyStrict rejects invalid calls with ErrInvalidTransition or ErrIndexOutOfRange.
	PolicyStrict Policy = iota
	// PolicyLenient silently ignores invalid calls, leaving state untouched.
	PolicyLenient
)

// ParsePolicy maps the config flag to a Policy.
func ParsePolicy(lenient bool) Policy {
	if lenient {
		return PolicyLenient
	}
	return PolicyStrict
}

// SessionOptions tunes a session. The zero value is a strict 60s quiz in bank order.
type SessionOptions struct {
	DurationSeconds int
	Policy          Policy
	Shuffle         bool
	Now             func() time.Time
	Rand            *rand.Rand
}

// Session is one learner's attempt at a question bank.
type Session struct {
	id     string
	source domain.QuestionBank
	opts   SessionOptions
	now    func() time.Time
	rnd    *rand.Rand

	mu          sync.Mutex
	bank        domain.QuestionBank
	phase       domain.Phase
	current     int
	answers     domain.AnswerSheet
	timer       *Timer
	updatedAt   time.Time
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession builds a NotStarted session over a validated bank.
func NewSession(id string, bank domain.QuestionBank, opts SessionOptions) (*Session, error) {
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(now().UnixNano()))
	}
	s := &Session{
		id:          id,
		source:      bank,
		opts:        opts,
		now:         now,
		rnd:         rnd,
		bank:        bank,
		phase:       domain.PhaseNotStarted,
		answers:     domain.NewAnswerSheet(bank.Len()),
		updatedAt:   now(),
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
	s.timer = NewTimer(opts.DurationSeconds, s.completeLocked)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// QuizID returns the identifier of the underlying question bank.
func (s *Session) QuizID() string {
	return s.source.ID
}

// Start begins a fresh attempt. It is not re-entrant while in progress; use Restart.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseInProgress {
		return s.rejectLocked(fmt.Errorf("start: session already in progress: %w", domain.ErrInvalidTransition))
	}
	s.resetLocked()
	s.broadcastLocked()
	return nil
}

// Restart discards the current attempt, whatever its phase, and starts a new one.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.broadcastLocked()
}

// SelectAnswer toggles option on the current question: picking the already
// selected option clears it, anything else replaces the selection.
func (s *Session) SelectAnswer(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("select answer"); err != nil {
		return err
	}
	q := s.bank.Questions[s.current]
	if option < 0 || option >= len(q.Options) {
		return s.rejectLocked(fmt.Errorf("select answer: option %d not in [0,%d): %w", option, len(q.Options), domain.ErrIndexOutOfRange))
	}
	if s.answers[s.current] == option {
		s.answers[s.current] = domain.Unanswered
	} else {
		s.answers[s.current] = option
	}
	s.broadcastLocked()
	return nil
}

// GoToQuestion jumps to question index.
func (s *Session) GoToQuestion(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("go to question"); err != nil {
		return err
	}
	if index < 0 || index >= s.bank.Len() {
		return s.rejectLocked(fmt.Errorf("go to question: index %d not in [0,%d): %w", index, s.bank.Len(), domain.ErrIndexOutOfRange))
	}
	s.current = index
	s.broadcastLocked()
	return nil
}

// Next advances one question; advancing past the last question submits the quiz.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("next"); err != nil {
		return err
	}
	if s.current+1 >= s.bank.Len() {
		s.completeLocked()
	} else {
		s.current++
	}
	s.broadcastLocked()
	return nil
}

// Previous steps back one question. At the first question it does nothing.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("previous"); err != nil {
		return err
	}
	if s.current > 0 {
		s.current--
		s.broadcastLocked()
	}
	return nil
}

// TimeExpired completes the session immediately, on whatever question it is.
func (s *Session) TimeExpired() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("time expired"); err != nil {
		return err
	}
	s.completeLocked()
	s.broadcastLocked()
	return nil
}

// Tick advances the session timer by one second. It reports whether this
// tick completed the session.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseInProgress {
		return false
	}
	s.timer.Tick()
	s.broadcastLocked()
	return s.phase == domain.PhaseComplete
}

// State returns a snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// TimeRemaining returns the seconds left on the countdown.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Remaining()
}

// CurrentQuestion returns the question under the cursor.
func (s *Session) CurrentQuestion() domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.Questions[s.current]
}

// CurrentView returns the question under the cursor together with the
// snapshot it was read from.
func (s *Session) CurrentView() (domain.Question, domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.Questions[s.current], s.snapshotLocked()
}

// QuestionAt returns the question at index in this attempt's order.
func (s *Session) QuestionAt(index int) (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.bank.Questions) {
		return domain.Question{}, false
	}
	return s.bank.Questions[index], true
}

// Bank returns the questions in the order this attempt presents them.
func (s *Session) Bank() domain.QuestionBank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank
}

// ComputeScore scores the full answer sheet as it stands.
func (s *Session) ComputeScore() domain.ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeScore(s.bank, s.answers)
}

// ComputeReview annotates every question against the answer sheet.
func (s *Session) ComputeReview() []domain.ReviewItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildReview(s.bank, s.answers)
}

// Subscribe returns a channel receiving a snapshot after every transition.
// The caller must invoke cancel to release it.
func (s *Session) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// The buffer is empty, so this cannot block while the lock is held.
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) resetLocked() {
	s.bank = s.source
	if s.opts.Shuffle {
		s.bank = shuffleBank(s.source, s.rnd)
	}
	s.current = 0
	s.answers = domain.NewAnswerSheet(s.bank.Len())
	s.phase = domain.PhaseInProgress
	s.timer.Start(s.opts.DurationSeconds)
}

// completeLocked is also the timer expiry callback, so it runs under s.mu.
func (s *Session) completeLocked() {
	if s.phase != domain.PhaseInProgress {
		return
	}
	s.phase = domain.PhaseComplete
	s.timer.Stop()
}

func (s *Session) requireInProgressLocked(op string) error {
	if s.phase == domain.PhaseInProgress {
		return nil
	}
	return s.rejectLocked(fmt.Errorf("%s: session is %s: %w", op, s.phase, domain.ErrInvalidTransition))
}

func (s *Session) rejectLocked(err error) error {
	if s.opts.Policy == PolicyLenient {
		return nil
	}
	return err
}

func (s *Session) broadcastLocked() {
	s.updatedAt = s.now()
	st := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			// Slow subscriber: drop its oldest snapshot so the latest one lands.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func (s *Session) snapshotLocked() domain.SessionState {
	return domain.SessionState{
		SessionID:     s.id,
		QuizID:        s.source.ID,
		Phase:         s.phase,
		CurrentIndex:  s.current,
		Total:         s.bank.Len(),
		Answers:       s.answers.Clone(),
		Answered:      s.answers.Count(),
		TimeRemaining: s.timer.Remaining(),
		TimerLevel:    s.timer.Level(),
		UpdatedAt:     s.updatedAt,
	}
}

// shuffleBank returns a Fisher-Yates permutation of the bank's questions.
func shuffleBank(bank domain.QuestionBank, rnd *rand.Rand) domain.QuestionBank {
	questions := make([]domain.Question, len(bank.Questions))
	copy(questions, bank.Questions)
	for i := len(questions) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
	out := bank
	out.Questions = questions
	return out
}
