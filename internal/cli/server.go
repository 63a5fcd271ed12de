package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"castfast/internal/chain"
	"castfast/internal/config"
	"castfast/internal/game"
	"castfast/internal/gateway"
	"castfast/internal/history"
	"castfast/internal/infra/memory"
	pgloader "castfast/internal/infra/postgres"
	redisstore "castfast/internal/infra/redis"
	transport "castfast/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	questions := game.DefaultQuestions()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loaded, err := pgloader.NewBankLoader(pool).LoadBank(ctx, cfg.Game.BankID)
		if err != nil {
			log.Warn().Err(err).Str("bank", cfg.Game.BankID).Msg("falling back to the built-in question bank")
		} else {
			questions = loaded
		}
	}
	bank, err := game.NewBank(questions)
	if err != nil {
		return err
	}

	var usedStore game.UsedQuestionStore
	var historyStore history.Store
	var pendingStore gateway.PendingStore
	if redisClient != nil {
		usedStore = redisstore.NewUsedQuestionStore(redisClient, redisTTL)
		historyStore = redisstore.NewHistoryStore(redisClient, redisTTL)
		pendingStore = redisstore.NewPendingStore(redisClient, redisTTL)
	} else {
		usedStore = memory.NewUsedQuestionStore()
		historyStore = memory.NewHistoryStore()
		pendingStore = memory.NewPendingStore()
	}
	historyLog := history.NewLog(historyStore)

	chainOpts := chain.Options{
		BatchSize:      cfg.Chain.BatchSize,
		BatchDelay:     config.TTLDuration(cfg.Chain.BatchDelay, 0),
		RetryAttempts:  cfg.Chain.RetryAttempts,
		RetryBaseDelay: config.TTLDuration(cfg.Chain.RetryBaseDelay, 0),
	}
	chainClient := chain.NewClient(
		cfg.Chain.Endpoints,
		cfg.Chain.ChainID,
		cfg.Chain.Owner,
		func(url string) chain.Backend { return chain.DialRPC(url, cfg.Chain.Contract, "") },
		chainOpts,
		log,
	)

	primary := ""
	if len(cfg.Chain.Endpoints) > 0 {
		primary = cfg.Chain.Endpoints[0]
	}
	var serverSigned chain.Submitter = chain.DialRPC(primary, cfg.Chain.Contract, cfg.Chain.ServerKey)
	var userSigned chain.Submitter = chain.DialRPC(primary, cfg.Chain.Contract, "")
	gw := gateway.New(serverSigned, userSigned, pendingStore, log)

	refreshDelay := config.TTLDuration(cfg.Chain.RefreshDelay, 2*time.Second)

	frameHandler := transport.NewFrameHandler(bank, baseURL, log)
	scoreHandler := transport.NewScoreHandler(gw, log)
	leaderboardHandler := transport.NewLeaderboardHandler(chainClient, refreshDelay, log)
	gameHandler := transport.NewGameHandler(bank, usedStore, historyLog, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/frame/question", frameHandler.Question)
	mux.HandleFunc("/frame/answer", frameHandler.Answer)
	mux.HandleFunc("/frame/start", frameHandler.Start)
	mux.HandleFunc("/frame/restart", frameHandler.Restart)
	mux.HandleFunc("/frame/card.svg", frameHandler.CardImage)
	mux.HandleFunc("/submit-score", scoreHandler.Submit)
	mux.HandleFunc("/submit-score/pending", scoreHandler.Pending)
	mux.HandleFunc("/leaderboard", leaderboardHandler.List)
	mux.HandleFunc("/leaderboard/delete", leaderboardHandler.Delete)
	mux.HandleFunc("/ws", gameHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Int("questions", bank.Len()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
