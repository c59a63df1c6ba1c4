package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"

	"github.com/sirupsen/logrus"
)

func newPlayService(seconds int) *app.QuizService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(map[string]domain.QuestionBank{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{Prompt: "Which HTTP status code represents 'Unauthorized'?", Options: []string{"200", "401", "403", "500"}, CorrectOption: 1},
				{Prompt: "Which data structure uses LIFO?", Options: []string{"Queue", "Stack", "Heap", "Graph"}, CorrectOption: 1},
				{Prompt: "What is the default port for HTTPS?", Options: []string{"21", "80", "443", "3306"}, CorrectOption: 2},
			},
		},
	}), time.Minute)
	return app.NewQuizService(memory.NewSessionStore(), banks, app.SessionOptions{DurationSeconds: seconds}, log)
}

func TestPlayQuizScriptedRun(t *testing.T) {
	var out bytes.Buffer
	script := strings.Join([]string{"2", "n", "2", "n", "1", "n"}, "\n") + "\n"

	if err := playQuiz(context.Background(), newPlayService(600), "quiz-1", strings.NewReader(script), &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Question 1/3: Which HTTP status code represents 'Unauthorized'?",
		"Time Left: 600s",
		"Score: 2/3 (67%)",
		domain.TierGood.Message(),
		"[X] Wrong",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPlayQuizReportsRejectedMoves(t *testing.T) {
	var out bytes.Buffer
	script := "p\n9\ng 9\nhello\nq\n"

	if err := playQuiz(context.Background(), newPlayService(600), "quiz-1", strings.NewReader(script), &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	got := out.String()
	if strings.Count(got, "not allowed:") != 2 {
		t.Fatalf("expected two rejected moves:\n%s", got)
	}
	if !strings.Contains(got, "quiz abandoned") || strings.Contains(got, "Score:") {
		t.Fatalf("expected abandon without result:\n%s", got)
	}
}

func TestPlayQuizEndsWhenTimeRunsOut(t *testing.T) {
	service := newPlayService(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = app.NewScheduler(service, 10*time.Millisecond, nil).Run(ctx) }()

	in, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	if err := playQuiz(ctx, service, "quiz-1", in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Time's up!") || !strings.Contains(got, "Score: 0/3 (0%)") {
		t.Fatalf("expected timeout result:\n%s", got)
	}
}

func TestPlayQuizUnknownQuiz(t *testing.T) {
	err := playQuiz(context.Background(), newPlayService(600), "missing", strings.NewReader(""), io.Discard)
	if err == nil {
		t.Fatalf("expected error for unknown quiz")
	}
}
