package integration

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	pgstore "timed-quiz-service/internal/infra/postgres"
	pgmigrations "timed-quiz-service/internal/infra/postgres/migrations"
	infraredis "timed-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, sampleBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	banks := infraredis.NewBankRepository(redisClient, pgstore.NewBankLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	log := logrus.New()
	log.SetOutput(io.Discard)
	service := app.NewQuizService(sessions, banks, app.SessionOptions{DurationSeconds: 30}, log)

	st, err := service.Create(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := st.SessionID
	if _, err := service.Start(ctx, id); err != nil {
		t.Fatalf("start: %v", err)
	}
	steps := []func() (domain.SessionState, error){
		func() (domain.SessionState, error) { return service.SelectAnswer(ctx, id, 1) },
		func() (domain.SessionState, error) { return service.Next(ctx, id) },
		func() (domain.SessionState, error) { return service.SelectAnswer(ctx, id, 0) },
		func() (domain.SessionState, error) { return service.Next(ctx, id) },
	}
	for i, step := range steps {
		if st, err = step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !st.IsComplete() {
		t.Fatalf("expected complete session, got %+v", st)
	}

	score, err := service.Score(ctx, id)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score.Score != 1 || score.Total != 2 || score.Percentage != 50 || score.Tier != domain.TierFair {
		t.Fatalf("unexpected score %+v", score)
	}

	snap, err := sessions.Snapshot(ctx, id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Phase != domain.PhaseComplete || snap.Answered != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if n, err := redisClient.Exists(ctx, "quiz:quiz-1:bank").Result(); err != nil || n != 1 {
		t.Fatalf("expected bank cached in redis, n=%d err=%v", n, err)
	}

	if _, err := service.Create(ctx, "missing"); err == nil {
		t.Fatalf("expected error for unknown quiz")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn string, bank domain.QuestionBank) {
	t.Helper()
	db := pgstore.OpenBun(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgstore.NewBankWriter(db).Upsert(ctx, bank); err != nil {
		t.Fatalf("upsert bank: %v", err)
	}
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:    "quiz-1",
		Title: "Integration",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "22"}, CorrectOption: 1},
			{Prompt: "Which data structure uses LIFO?", Options: []string{"Queue", "Stack", "Heap", "Graph"}, CorrectOption: 1},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
