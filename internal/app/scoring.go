package app

import (
	"math"

	"timed-quiz-service/internal/domain"
)

// ComputeScore counts answers matching the correct option. It is recomputed
// from the whole sheet every call; unanswered entries never count.
func ComputeScore(bank domain.QuestionBank, answers domain.AnswerSheet) domain.ScoreResult {
	score := 0
	for i, q := range bank.Questions {
		if i < len(answers) && answers[i] != domain.Unanswered && answers[i] == q.CorrectOption {
			score++
		}
	}
	total := bank.Len()
	pct := Percentage(score, total)
	tier := domain.TierFor(pct)
	return domain.ScoreResult{
		Score:      score,
		Total:      total,
		Percentage: pct,
		Tier:       tier,
		Message:    tier.Message(),
	}
}

// Percentage returns round(value/total*100), or 0 for an empty total.
func Percentage(value, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(total) * 100))
}
