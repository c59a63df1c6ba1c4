package app

import (
	"fmt"
	"io"
	"strings"

	"timed-quiz-service/internal/domain"
)

// BuildReview annotates every question of the bank against the sheet.
func BuildReview(bank domain.QuestionBank, answers domain.AnswerSheet) []domain.ReviewItem {
	items := make([]domain.ReviewItem, 0, bank.Len())
	for i, q := range bank.Questions {
		selected := domain.Unanswered
		if i < len(answers) {
			selected = answers[i]
		}
		status := domain.ReviewWrong
		switch {
		case selected == domain.Unanswered:
			status = domain.ReviewSkipped
		case selected == q.CorrectOption:
			status = domain.ReviewCorrect
		}
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		items = append(items, domain.ReviewItem{
			Index:          i,
			Prompt:         q.Prompt,
			Options:        options,
			Status:         status,
			SelectedOption: selected,
			CorrectOption:  q.CorrectOption,
		})
	}
	return items
}

// WriteReview renders review items as plain text, marking the correct option
// with [OK] and a wrong pick with [X].
func WriteReview(w io.Writer, items []domain.ReviewItem) error {
	var b strings.Builder
	for _, item := range items {
		label := "Skipped"
		switch item.Status {
		case domain.ReviewCorrect:
			label = "[OK] Correct"
		case domain.ReviewWrong:
			label = "[X] Wrong"
		}
		fmt.Fprintf(&b, "Q%d. %s  %s\n", item.Index+1, item.Prompt, label)
		for i, opt := range item.Options {
			marker := "   "
			if i == item.CorrectOption {
				marker = "[OK]"
			}
			if i == item.SelectedOption && item.Status == domain.ReviewWrong {
				marker = "[X]"
			}
			fmt.Fprintf(&b, "    %-4s %s\n", marker, opt)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
