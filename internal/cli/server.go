package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"scholarship-test-service/internal/app"
	"scholarship-test-service/internal/auth"
	"scholarship-test-service/internal/config"
	"scholarship-test-service/internal/domain"
	"scholarship-test-service/internal/infra/memory"
	"scholarship-test-service/internal/infra/postgres"
	rediscache "scholarship-test-service/internal/infra/redis"
	transport "scholarship-test-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the test server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// records is the full persistence surface the server needs from one backend.
type records interface {
	app.ResultRepository
	app.UserRepository
	auth.UserStore
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	var store records
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
		log.Printf("using postgres storage")
	} else {
		store = memory.NewRecordStoreWithQuestions(domain.SampleQuestions())
		log.Printf("using in-memory storage; data is lost on restart")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	questionsTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var bank app.QuestionRepository
	var sessions auth.SessionStore
	if redisClient != nil {
		bank = rediscache.NewQuestionBank(redisClient, store, questionsTTL)
		sessions = rediscache.NewSessionStore(redisClient)
	} else {
		bank = memory.NewQuestionBank(store, questionsTTL)
		sessions = memory.NewSessionStore()
	}

	authSvc := auth.NewService(store, sessions, auth.ServiceConfig{
		SessionTTL: config.TTLDuration(cfg.Auth.SessionTTL, 24*time.Hour),
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if cfg.Auth.Admin.Username != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.Auth.Admin.Username, cfg.Auth.Admin.Email, cfg.Auth.Admin.Password); err != nil {
			return err
		}
		log.Printf("admin account %q ready", cfg.Auth.Admin.Username)
	}

	scoring := app.NewScoringService(bank, store, store)
	hub := app.NewLeaderboardHub(scoring)
	scoring.SetPublisher(hub)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go hub.Run(runCtx, config.TTLDuration(cfg.Leaderboard.PushInterval, 30*time.Second))

	handler := transport.NewHandler(scoring, authSvc, hub, transport.Options{CookieSecure: cfg.Auth.CookieSecure})
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting scholarship test service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	cancelRun()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
