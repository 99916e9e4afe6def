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

	swarmhttp "github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/http"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/mcp"
	swarmnats "github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/nats"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/openai"
	swarmotel "github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/otel"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/postgres"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/ristretto"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/websearch"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/ws"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/config"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/agent"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/logger"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/middleware"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/ratelimit"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/resilience"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/service"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/tools"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	log.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"model", cfg.Gateway.Model,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOtel, err := swarmotel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	metrics, err := swarmotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied")

	queue, err := swarmnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer queue.Close()

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// --- Model gateway ---
	gw := openai.NewClient(cfg.Gateway.URL, cfg.Gateway.APIKey, cfg.Gateway.Model,
		cfg.Gateway.MaxTokens, cfg.Gateway.RequestTimeout)
	gw.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Cooldown))

	limiter := ratelimit.New(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst, cfg.Rate.CheckInterval)
	limited := service.NewLimitedGateway(gw, limiter, metrics)

	// --- Tools ---
	store := postgres.NewStore(pool)
	searchClient := websearch.NewClient(cfg.WebSearch.URL, cfg.WebSearch.APIKey,
		cfg.WebSearch.MaxResults, cfg.WebSearch.MaxConcurrent)

	registry := tools.NewRegistry(
		tools.NewUserInfoTool(store, cache, cfg.Cache.DefaultTTL),
		tools.NewSupportCallTool(store),
		tools.NewRetrieverTool(store, cache, cfg.WebSearch.MaxResults, cfg.Cache.DefaultTTL),
		tools.NewWebSearchTool(searchClient),
		tools.NewGetAppointmentsTool(store, cfg.Booking),
		tools.NewAddAppointmentTool(store),
	)

	// --- Orchestration ---
	hub := ws.NewHub()
	team := agent.NewTeam(service.PersonaPrompts(cfg.Booking))
	compactor := service.NewCompactor(limited, cfg.Compaction, cfg.Gateway.SummaryModel)

	orch := service.NewOrchestrator(team, limited, registry, compactor, store,
		hub, metrics, log, cfg.Turn, cfg.Gateway, cfg.Booking.Timezone)

	teamSvc := service.NewTeam(orch, store, queue, hub, metrics, log)
	ingestor := service.NewIngestor(store, log)

	// --- MCP ---
	if cfg.MCP.Enabled {
		mcpSrv := mcp.NewServer(":"+cfg.MCP.Port, mcp.Deps{
			Threads:      teamSvc,
			SupportCalls: store,
		}, log)
		go func() {
			if err := mcpSrv.Start(); err != nil {
				log.Error("mcp server stopped", "error", err)
			}
		}()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mcpSrv.Stop(stopCtx)
		}()
	}

	// --- HTTP ---
	httpLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	stopCleanup := httpLimiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	handlers := swarmhttp.NewHandlers(teamSvc, ingestor, log)
	router := swarmhttp.NewRouter(handlers, hub.HandleWS, cfg.Server.RequestTimeout, httpLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := queue.Drain(); err != nil {
		log.Warn("nats drain failed", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}
