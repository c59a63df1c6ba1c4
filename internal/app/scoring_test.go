package app_test

import (
	"bytes"
	"strings"
	"testing"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

func TestComputeScoreScenario(t *testing.T) {
	bank := threeQuestionBank()
	answers := domain.AnswerSheet{1, 0, 2}

	got := app.ComputeScore(bank, answers)
	if got.Score != 2 || got.Total != 3 || got.Percentage != 67 || got.Tier != domain.TierGood {
		t.Fatalf("unexpected score %+v", got)
	}
	if got.Message != "Good job! Keep learning!" {
		t.Fatalf("unexpected message %q", got.Message)
	}

	review := app.BuildReview(bank, answers)
	want := []domain.ReviewStatus{domain.ReviewCorrect, domain.ReviewWrong, domain.ReviewCorrect}
	for i, item := range review {
		if item.Status != want[i] {
			t.Fatalf("review[%d] = %s, want %s", i, item.Status, want[i])
		}
	}
	if review[1].SelectedOption != 0 || review[1].CorrectOption != 1 {
		t.Fatalf("unexpected annotation %+v", review[1])
	}
}

func TestComputeScoreExtremes(t *testing.T) {
	bank := threeQuestionBank()

	perfect := app.ComputeScore(bank, domain.AnswerSheet{1, 1, 2})
	if perfect.Score != 3 || perfect.Percentage != 100 || perfect.Tier != domain.TierExcellent {
		t.Fatalf("unexpected perfect score %+v", perfect)
	}

	blank := app.ComputeScore(bank, domain.NewAnswerSheet(3))
	if blank.Score != 0 || blank.Percentage != 0 || blank.Tier != domain.TierKeepPracticing {
		t.Fatalf("unexpected blank score %+v", blank)
	}
	for _, item := range app.BuildReview(bank, domain.NewAnswerSheet(3)) {
		if item.Status != domain.ReviewSkipped || item.SelectedOption != domain.Unanswered {
			t.Fatalf("expected skipped, got %+v", item)
		}
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct{ value, total, want int }{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{4, 5, 80},
		{10, 10, 100},
	}
	for _, c := range cases {
		if got := app.Percentage(c.value, c.total); got != c.want {
			t.Fatalf("Percentage(%d,%d) = %d, want %d", c.value, c.total, got, c.want)
		}
	}
}

func TestWriteReview(t *testing.T) {
	var buf bytes.Buffer
	if err := app.WriteReview(&buf, app.BuildReview(threeQuestionBank(), domain.AnswerSheet{1, 0, domain.Unanswered})); err != nil {
		t.Fatalf("write review: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Q1.", "[OK] Correct", "[X] Wrong", "Skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("review output missing %q:\n%s", want, out)
		}
	}
}

// threeQuestionBank has correct options [1,1,2].
func threeQuestionBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID: "quiz-3",
		Questions: []domain.Question{
			{Prompt: "Which HTTP status code represents 'Unauthorized'?", Options: []string{"200", "401", "403", "500"}, CorrectOption: 1},
			{Prompt: "Which data structure uses LIFO?", Options: []string{"Queue", "Stack", "Heap", "Graph"}, CorrectOption: 1},
			{Prompt: "What is the default port for HTTPS?", Options: []string{"21", "80", "443", "3306"}, CorrectOption: 2},
		},
	}
}

func nQuestionBank(n int) domain.QuestionBank {
	bank := domain.QuestionBank{ID: "quiz-n"}
	for i := 0; i < n; i++ {
		bank.Questions = append(bank.Questions, domain.Question{
			Prompt:        "Question",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: i % 4,
		})
	}
	return bank
}
