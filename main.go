package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"loan-approval/classifier"
	"loan-approval/config"
	httpLayer "loan-approval/http"
	"loan-approval/logger"
	"loan-approval/repository"
	"loan-approval/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewStderr("info").Error("Failed to load configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("Server exited", nil)
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()

	artifact, err := classifier.Load(cfg.Model.Path)
	if err != nil {
		return err
	}
	log.Info("Model loaded", map[string]interface{}{
		"path":     cfg.Model.Path,
		"features": artifact.Features,
		"trees":    len(artifact.Pipeline.Forest.Trees),
	})

	cache, closeCache := openCache(ctx, cfg.Cache, log)
	defer closeCache()

	audit, closeAudit, err := openAudit(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	generator, err := service.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
	if err != nil {
		return err
	}

	insights := service.NewInsightService(generator, cache, service.InsightConfig{
		Options: service.GenerationOptions{
			Model:           cfg.Gemini.Model,
			Temperature:     cfg.Gemini.Temperature,
			TopP:            cfg.Gemini.TopP,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		},
		Timeout:  cfg.Gemini.Timeout,
		CacheTTL: cfg.Cache.TTL,
	}, log.With(map[string]interface{}{"component": "insight"}))

	assessments := service.NewAssessmentService(
		service.NewDecisionService(artifact, log),
		insights,
		service.NewLoanService(cfg.Repayment.AnnualRate, cfg.Repayment.TermUnit),
		audit,
		log,
	)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
	defer rateLimiter.Stop()

	mux := httpLayer.NewRouter(httpLayer.Handlers{
		Loan:    httpLayer.NewLoanHandler(assessments, cfg.Repayment.TermUnit, log),
		Advisor: httpLayer.NewAdvisorHandler(service.NewAdvisorService(insights), log),
		Limiter: rateLimiter,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": cfg.Server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// openCache prefers Redis and falls back to the in-process cache when no
// address is configured or the server does not answer.
func openCache(ctx context.Context, cfg config.CacheConfig, log logger.Logger) (repository.CacheRepository, func()) {
	if cfg.RedisAddr == "" {
		return repository.NewMemoryCache(), func() {}
	}
	redisCache := repository.NewRedisCache(cfg.RedisAddr)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("Redis unavailable, using in-memory insight cache", map[string]interface{}{
			"addr":  cfg.RedisAddr,
			"error": err.Error(),
		})
		_ = redisCache.Close()
		return repository.NewMemoryCache(), func() {}
	}
	log.Info("Insight cache connected", map[string]interface{}{"addr": cfg.RedisAddr})
	return redisCache, func() { _ = redisCache.Close() }
}

func openAudit(ctx context.Context, cfg config.AuditConfig, log logger.Logger) (repository.DecisionRepository, func(), error) {
	switch cfg.Driver {
	case "memory":
		return repository.NewDecisionRepositoryMemory(cfg.MemoryLimit), func() {}, nil
	case "postgres":
		db, err := repository.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewDecisionRepositoryPostgres(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		log.Info("Decision audit enabled", map[string]interface{}{"driver": "postgres"})
		return repo, func() { _ = repo.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}
