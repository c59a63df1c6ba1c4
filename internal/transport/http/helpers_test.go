package http

import (
	"io"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"

	"github.com/sirupsen/logrus"
)

func newTestService() *app.QuizService {
	store := memory.NewSessionStore()
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(sampleBanks()), time.Minute)
	return app.NewQuizService(store, banks, app.SessionOptions{}, quietLogger())
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{Prompt: "Which HTTP status code represents 'Unauthorized'?", Options: []string{"200", "401", "403", "500"}, CorrectOption: 1},
				{Prompt: "Which data structure uses LIFO?", Options: []string{"Queue", "Stack", "Heap", "Graph"}, CorrectOption: 1},
				{Prompt: "What is the default port for HTTPS?", Options: []string{"21", "80", "443", "3306"}, CorrectOption: 2},
			},
		},
	}
}
