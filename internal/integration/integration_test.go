package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"castfast/internal/domain"
	"castfast/internal/game"
	"castfast/internal/history"
	pgloader "castfast/internal/infra/postgres"
	pgmigrations "castfast/internal/infra/postgres/migrations"
	infraredis "castfast/internal/infra/redis"
)

func TestGameAgainstRealStores(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, "default", sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	questions, err := pgloader.NewBankLoader(pool).LoadBank(ctx, "default")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(questions) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(questions))
	}
	bank, err := game.NewBank(questions)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	usedStore := infraredis.NewUsedQuestionStore(redisClient, 5*time.Minute)

	// Play a full round; every drawn question must land in the shared
	// used-questions list afterwards.
	session, err := game.NewSession(ctx, bank, usedStore)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for i := 0; i < game.QuestionsPerRound; i++ {
		view := session.Current()
		out := session.Answer(view.Options[0])
		if !out.Accepted {
			t.Fatalf("answer %d not accepted", i)
		}
		if _, err := session.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	used, err := usedStore.Get(ctx)
	if err != nil {
		t.Fatalf("used get: %v", err)
	}
	if len(used) != game.QuestionsPerRound {
		t.Fatalf("expected %d used questions, got %d", game.QuestionsPerRound, len(used))
	}

	// History survives a round trip through real Redis with the dedup policy intact.
	log := history.NewLog(infraredis.NewHistoryStore(redisClient, 5*time.Minute))
	added, err := log.Append(ctx, "42", domain.HistoryRecord{Score: 150, Correct: 8, Accuracy: 53})
	if err != nil || !added {
		t.Fatalf("append: added=%v err=%v", added, err)
	}
	added, err = log.Append(ctx, "42", domain.HistoryRecord{Score: 150, Correct: 8, Accuracy: 53})
	if err != nil || added {
		t.Fatalf("duplicate not suppressed: added=%v err=%v", added, err)
	}
	records, err := log.List(ctx, "42")
	if err != nil || len(records) != 1 {
		t.Fatalf("list: %v err %v", records, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
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
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn, bankID string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, bankID, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleQuestions() []domain.Question {
	questions := make([]domain.Question, 0, 20)
	for i := 0; i < 20; i++ {
		questions = append(questions, domain.Question{
			Text:         fmt.Sprintf("Integration question %d?", i),
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 0,
		})
	}
	return questions
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
