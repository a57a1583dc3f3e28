// Package main is the entrypoint for the careercoach API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/careercoach/internal/ai"
	"github.com/kiranshivaraju/careercoach/internal/api"
	"github.com/kiranshivaraju/careercoach/internal/api/handler"
	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/auth"
	"github.com/kiranshivaraju/careercoach/internal/blob"
	"github.com/kiranshivaraju/careercoach/internal/cache"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/metrics"
	"github.com/kiranshivaraju/careercoach/internal/resultcache"
	"github.com/kiranshivaraju/careercoach/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel,
	})))
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env, "blob", cfg.Blob.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	metrics.Register()

	// 5. Create AI provider behind a reloadable handle
	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	aiHandle := ai.NewHandle(provider, ai.NewProvider)
	slog.Info("AI provider initialized", "provider", aiHandle.Name())

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go watchReload(ctx, hup, aiHandle, config.LoadAI)

	// 6. Blob archive and event publisher are optional
	blobStore, err := blob.New(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}
	broker, err := events.New(cfg.Events.RabbitMQURL, cfg.Events.Exchange)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	publisher := events.NewDispatcher(broker)
	defer publisher.Close()

	// 7. Services
	pgStore := store.NewPostgresStore(pool)
	resultCache := resultcache.New(pgStore,
		resultcache.WithStoreTimeout(cfg.ResultCache.StoreTimeout),
		resultcache.WithLogger(slog.Default()),
	)
	jwt, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("create jwt manager: %w", err)
	}

	speech := career.NewSpeechService(aiHandle)
	resumes := career.NewResumeService(aiHandle, resultCache, pgStore, blobStore, publisher)
	roadmaps := career.NewRoadmapService(aiHandle, pgStore, publisher)
	quizzes := career.NewQuizService(aiHandle, pgStore, redisCache, publisher, cfg.Redis.SessionTTL)
	interviews := career.NewInterviewService(aiHandle, pgStore, redisCache, speech, publisher, cfg.Redis.SessionTTL)
	jobs := career.NewJobService(pgStore, publisher)
	progress := career.NewProgressService(pgStore)
	accounts := career.NewProfileService(pgStore, jwt)

	// 8. Build router with dependencies
	router := api.NewRouter(api.Dependencies{
		Auth:        mw.NewAuth(jwt),
		RateLimit:   mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),
		CORSOrigins: cfg.Server.CORSAllowedOrigins,

		HealthHandler:  handler.NewHealthHandler(map[string]handler.Pinger{"database": pgStore, "cache": redisCache}),
		MetricsHandler: metrics.Handler(),
		AIStatus:       handler.NewAIStatusHandler(aiHandle),

		Signup:        handler.NewSignupHandler(accounts),
		Login:         handler.NewLoginHandler(accounts),
		GetProfile:    handler.NewGetProfileHandler(accounts),
		UpdateProfile: handler.NewUpdateProfileHandler(accounts),

		AnalyzeResume: handler.NewAnalyzeResumeHandler(resumes),
		LatestResume:  handler.NewLatestResumeHandler(resumes),

		CreateRoadmap: handler.NewCreateRoadmapHandler(roadmaps),
		ListRoadmaps:  handler.NewListRoadmapsHandler(roadmaps),
		LatestRoadmap: handler.NewLatestRoadmapHandler(roadmaps),

		StartQuiz:  handler.NewStartQuizHandler(quizzes),
		SubmitQuiz: handler.NewSubmitQuizHandler(quizzes),

		StartInterview:  handler.NewStartInterviewHandler(interviews),
		AnswerInterview: handler.NewAnswerInterviewHandler(interviews),
		InterviewRounds: handler.NewInterviewRoundsHandler(interviews),
		Speech:          handler.NewSpeechHandler(speech),

		SearchJobs:       handler.NewSearchJobsHandler(jobs),
		ApplyJob:         handler.NewApplyJobHandler(jobs),
		ListApplications: handler.NewListApplicationsHandler(jobs),

		Progress: handler.NewProgressHandler(progress),
	})

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Provider calls may run up to the inference timeout, plus retries.
		WriteTimeout: cfg.AI.InferenceTimeout*time.Duration(cfg.AI.MaxRetries+1) + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	// Analyses already returned to users may still be writing their cache entry.
	if err := resultCache.Wait(shutdownCtx); err != nil {
		slog.Warn("result cache stores did not finish", "error", err)
	}
	if err := publisher.Wait(shutdownCtx); err != nil {
		slog.Warn("pending events did not finish", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

type reloader interface {
	Reload(ctx context.Context, cfg config.AIConfig) error
}

// watchReload re-reads the AI configuration on every signal and swaps the
// provider, so a rejected API key can be replaced without a restart.
func watchReload(ctx context.Context, sig <-chan os.Signal, r reloader, load func() (config.AIConfig, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			cfg, err := load()
			if err != nil {
				slog.Error("reload ai config failed", "error", err)
				continue
			}
			if err := r.Reload(ctx, cfg); err != nil {
				slog.Error("reload ai provider failed", "error", err)
			}
		}
	}
}
