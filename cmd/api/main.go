package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/ramdeus-bot/internal/config"
	"github.com/jwebster45206/ramdeus-bot/internal/discord"
	"github.com/jwebster45206/ramdeus-bot/internal/handlers"
	"github.com/jwebster45206/ramdeus-bot/internal/logger"
	"github.com/jwebster45206/ramdeus-bot/internal/metrics"
	"github.com/jwebster45206/ramdeus-bot/internal/middleware"
	"github.com/jwebster45206/ramdeus-bot/internal/services"
	"github.com/jwebster45206/ramdeus-bot/internal/storage"
	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
	"github.com/jwebster45206/ramdeus-bot/pkg/quotes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Ram Deus bot",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"store_backend", cfg.StoreBackend)

	store, engineOpts, err := openStore(cfg, log)
	if err != nil {
		log.Error("Failed to open battle store", "error", err)
		os.Exit(1)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Error("Failed to reach battle store", "error", err)
		os.Exit(1)
	}
	log.Info("Battle store ready")

	engine := battle.NewEngine(store, append(engineOpts, battle.WithLogger(log))...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	if bs, err := engine.CurrentState(pingCtx); err == nil {
		m.ObserveHealth(bs.Health)
	} else {
		log.Warn("Battle state unreadable at startup", "error", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, engine, log))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	battleHandler := handlers.NewBattleHandler(engine, cfg.AdminToken, m, log)
	mux.Handle("/v1/battle", battleHandler)
	mux.Handle("/v1/battle/", battleHandler)
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set, operator attack and reset routes are disabled")
	}

	var interactions *handlers.InteractionsHandler
	if cfg.DiscordEnabled() {
		verifier, err := discord.NewVerifier(cfg.PublicKey)
		if err != nil {
			log.Error("Invalid PUBLIC_KEY", "error", err)
			os.Exit(1)
		}

		var advisor handlers.Advisor
		if cfg.AzureEnabled() {
			llm := services.NewAzureOpenAIService(cfg.AzureResource, cfg.AzureKey, cfg.AzureDeployment, cfg.AzureAPIVersion, log)
			advisor = services.NewAdviceService(llm, engine, log)
		} else {
			log.Warn("Azure OpenAI not configured, /advice is disabled")
		}

		interactions = handlers.NewInteractionsHandler(handlers.InteractionsConfig{
			Verifier:      verifier,
			Battle:        engine,
			Quotes:        quotes.NewPicker(),
			Advisor:       advisor,
			Followups:     discord.NewClient(cfg.AppID, cfg.DiscordToken, log),
			AdviceTimeout: cfg.AdviceTimeout,
			Metrics:       m,
			Logger:        log,
		})
		mux.Handle("/interactions", interactions)
	} else {
		log.Warn("PUBLIC_KEY not set, Discord interactions endpoint is disabled")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, m)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if interactions != nil {
		if err := interactions.Wait(shutdownCtx); err != nil {
			log.Warn("Abandoned pending advice follow-ups", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing battle store", "error", err)
	}

	log.Info("Server exited")
}

// openStore builds the configured backend. The Redis backend also shares its
// lock with every other instance pointed at the same key prefix.
func openStore(cfg *config.Config, log *slog.Logger) (storage.Storage, []battle.Option, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rs, err := storage.NewRedisStorage(cfg.RedisURL, cfg.RedisKeyPrefix, log)
		if err != nil {
			return nil, nil, err
		}
		waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := rs.WaitForConnection(waitCtx, 2*time.Second); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		locker := storage.NewRedisLocker(rs.Client(), cfg.RedisKeyPrefix, cfg.LockTTL, cfg.LockWait, log)
		return rs, []battle.Option{battle.WithLocker(locker)}, nil
	default:
		fs := storage.NewFileStore(cfg.DataDir, log)
		log.Info("Using file battle store", "path", fs.Path())
		return fs, nil, nil
	}
}
