package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/file"
	"timed-quiz-service/internal/infra/memory"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const playHelp = "commands: <n> pick option n, n next, p previous, g <n> go to question n, q quit"

// NewPlayCmd runs a single quiz session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var quizID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg)
			log.SetOutput(cmd.ErrOrStderr())
			if cfg.Log.Level == "" {
				log.SetLevel(logrus.WarnLevel)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var closers []func()
			defer func() {
				for _, c := range closers {
					c()
				}
			}()
			loader, err := buildLoader(ctx, cfg, &closers)
			if err != nil {
				return err
			}
			service := app.NewQuizService(
				memory.NewSessionStore(),
				memory.NewBankRepository(loader, config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)),
				app.SessionOptions{
					DurationSeconds: cfg.QuizSeconds(),
					Policy:          app.ParsePolicy(cfg.Quiz.Lenient),
					Shuffle:         cfg.Quiz.Shuffle,
				},
				log,
			)

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() { _ = app.NewScheduler(service, time.Second, log).Run(ctx) }()

			return playQuiz(ctx, service, quizID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", file.DefaultBankID, "question bank to play")
	return cmd
}

type player struct {
	service *app.QuizService
	id      string
	out     io.Writer
}

// playQuiz drives one session from line-oriented input until it completes,
// the input ends, or the player quits.
func playQuiz(ctx context.Context, service *app.QuizService, quizID string, in io.Reader, out io.Writer) error {
	st, err := service.Create(ctx, quizID)
	if err != nil {
		return err
	}
	p := &player{service: service, id: st.SessionID, out: out}
	defer func() { _ = service.Discard(context.Background(), p.id) }()

	updates, unsubscribe, err := service.Subscribe(ctx, p.id)
	if err != nil {
		return err
	}
	defer unsubscribe()

	if _, err := service.Start(ctx, p.id); err != nil {
		return err
	}
	fmt.Fprintln(out, playHelp)
	if err := p.render(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	level := domain.TimerNormal
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			if st.IsComplete() {
				fmt.Fprintln(out, "Time's up!")
				return p.finish(ctx)
			}
			if st.TimerLevel != level {
				level = st.TimerLevel
				fmt.Fprintln(out, app.FormatRemaining(st.TimeRemaining))
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			done, err := p.handle(ctx, line)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			st, err := service.State(ctx, p.id)
			if err != nil {
				return err
			}
			if st.IsComplete() {
				return p.finish(ctx)
			}
			if err := p.render(ctx); err != nil {
				return err
			}
		}
	}
}

// handle applies one command. Rejected moves are reported and play goes on.
func (p *player) handle(ctx context.Context, line string) (bool, error) {
	var err error
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return false, nil
	case fields[0] == "q":
		fmt.Fprintln(p.out, "quiz abandoned")
		return true, nil
	case fields[0] == "n":
		_, err = p.service.Next(ctx, p.id)
	case fields[0] == "p":
		_, err = p.service.Previous(ctx, p.id)
	case fields[0] == "g" && len(fields) == 2:
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			fmt.Fprintln(p.out, playHelp)
			return false, nil
		}
		_, err = p.service.GoToQuestion(ctx, p.id, n-1)
	default:
		n, convErr := strconv.Atoi(fields[0])
		if convErr != nil || len(fields) != 1 {
			fmt.Fprintln(p.out, playHelp)
			return false, nil
		}
		_, err = p.service.SelectAnswer(ctx, p.id, n-1)
	}
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrIndexOutOfRange):
		fmt.Fprintf(p.out, "not allowed: %v\n", err)
		return false, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

func (p *player) render(ctx context.Context) error {
	q, st, err := p.service.CurrentQuestion(ctx, p.id)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nQuestion %d/%d: %s\n", st.CurrentIndex+1, st.Total, q.Prompt)
	for i, opt := range q.Options {
		mark := " "
		if st.Answers[st.CurrentIndex] == i {
			mark = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", mark, i+1, opt)
	}
	fmt.Fprintln(p.out, app.FormatRemaining(st.TimeRemaining))
	return nil
}

func (p *player) finish(ctx context.Context) error {
	score, err := p.service.Score(ctx, p.id)
	if err != nil {
		return err
	}
	review, err := p.service.Review(ctx, p.id)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nScore: %d/%d (%d%%)\n%s\n\n", score.Score, score.Total, score.Percentage, score.Message)
	return app.WriteReview(p.out, review)
}
