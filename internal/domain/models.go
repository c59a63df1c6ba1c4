package domain

import (
	"fmt"
	"time"
)

// Unanswered marks an answer sheet entry with no selection.
const Unanswered = -1

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Options       []string `json:"options" yaml:"options"`
	CorrectOption int      `json:"correctOption" yaml:"correctOption"`
}

// QuestionBank is the ordered, index-addressed list of questions for a quiz.
type QuestionBank struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions in the bank.
func (b QuestionBank) Len() int {
	return len(b.Questions)
}

// Validate checks that the bank is non-empty and every correct index points
// into its own option list.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("bank %q has no questions: %w", b.ID, ErrInvalidBank)
	}
	for i, q := range b.Questions {
		if len(q.Options) == 0 {
			return fmt.Errorf("bank %q question %d has no options: %w", b.ID, i, ErrInvalidBank)
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return fmt.Errorf("bank %q question %d correct option %d out of [0,%d): %w",
				b.ID, i, q.CorrectOption, len(q.Options), ErrInvalidBank)
		}
	}
	return nil
}

// AnswerSheet holds the selected option per question, or Unanswered.
type AnswerSheet []int

// NewAnswerSheet returns a sheet of n unanswered entries.
func NewAnswerSheet(n int) AnswerSheet {
	sheet := make(AnswerSheet, n)
	for i := range sheet {
		sheet[i] = Unanswered
	}
	return sheet
}

// Answered reports whether question i has a selection.
func (a AnswerSheet) Answered(i int) bool {
	return i >= 0 && i < len(a) && a[i] != Unanswered
}

// Count returns how many questions have a selection.
func (a AnswerSheet) Count() int {
	n := 0
	for _, v := range a {
		if v != Unanswered {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the sheet.
func (a AnswerSheet) Clone() AnswerSheet {
	out := make(AnswerSheet, len(a))
	copy(out, a)
	return out
}

// Phase is the lifecycle position of a quiz session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// TimerLevel buckets the remaining time for display.
type TimerLevel string

const (
	TimerNormal  TimerLevel = "normal"
	TimerWarning TimerLevel = "warning"
	TimerDanger  TimerLevel = "danger"
)

// TimerState is a snapshot of the countdown.
type TimerState struct {
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
}

// SessionState is a read-only snapshot of a quiz session.
type SessionState struct {
	SessionID     string      `json:"sessionId"`
	QuizID        string      `json:"quizId"`
	Phase         Phase       `json:"phase"`
	CurrentIndex  int         `json:"currentIndex"`
	Total         int         `json:"total"`
	Answers       AnswerSheet `json:"answers"`
	Answered      int         `json:"answered"`
	TimeRemaining int         `json:"timeRemaining"`
	TimerLevel    TimerLevel  `json:"timerLevel"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsComplete reports whether the session has been submitted.
func (s SessionState) IsComplete() bool {
	return s.Phase == PhaseComplete
}

// ScoreResult summarizes a scored answer sheet.
type ScoreResult struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Tier       Tier   `json:"tier"`
	Message    string `json:"message"`
}

// ReviewStatus classifies a single reviewed question.
type ReviewStatus string

const (
	ReviewCorrect ReviewStatus = "correct"
	ReviewWrong   ReviewStatus = "wrong"
	ReviewSkipped ReviewStatus = "skipped"
)

// ReviewItem annotates one question of a finished (or in-flight) sheet.
type ReviewItem struct {
	Index          int          `json:"index"`
	Prompt         string       `json:"prompt"`
	Options        []string     `json:"options"`
	Status         ReviewStatus `json:"status"`
	SelectedOption int          `json:"selectedOption"`
	CorrectOption  int          `json:"correctOption"`
}
