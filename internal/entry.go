// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/assist"
	"github.com/starford/dagaz/internal/gateway"
	"github.com/starford/dagaz/internal/planner"
	"github.com/starford/dagaz/internal/reconcile"
	"github.com/starford/dagaz/internal/repository"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("artifacts_path", cfg.Artifacts.Path),
		slog.String("planner_url", cfg.Planner.URL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the artifact directory exists.
	if err := os.MkdirAll(cfg.Artifacts.Path, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	artifacts, err := storage.NewFS(cfg.Artifacts.Path)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	db, err := repository.NewDB(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	runs := repository.NewRunRepository(db)
	events := repository.NewEventRepository(db)
	reminders := repository.NewReminderRepository(db)
	conferences := repository.NewConferenceRepository(db)
	ranges := repository.NewPreferredTimeRangeRepository(db)
	prefs := repository.NewPreferenceRepository(db)
	categories := repository.NewCategoryRepository(db)
	meetings := repository.NewMeetingRepository(db)

	provider, err := app.provider(ctx, cfg)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	reconciler := reconcile.New(runs, events, reminders, artifacts, provider, broker)

	solver := planner.NewClient(cfg.Planner.URL, cfg.Planner.Username, cfg.Planner.Password)
	orchestrator := assist.New(assist.Deps{
		Meetings:    meetings,
		Events:      events,
		Prefs:       prefs,
		Ranges:      ranges,
		Reminders:   reminders,
		Conferences: conferences,
		Categories:  categories,
		Runs:        runs,
		Artifacts:   artifacts,
		Solver:      solver,
		Broker:      broker,
		CallbackURL: cfg.Planner.CallbackURL,
		Delay:       cfg.Planner.Delay,
	})

	apiRouter := api.NewRouter(reconciler, runs, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Cron jobs: the run-timeout watchdog and the assist poller.
	scheduler := cron.New()
	if cfg.Planner.SweepSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Planner.SweepSchedule, func() {
			swept, err := runs.SweepTimeouts(gCtx, time.Now(), cfg.Planner.MaxWait)
			if err != nil {
				logger.Error("run timeout sweep failed", slog.String("error", err.Error()))
				return
			}
			if swept > 0 {
				logger.Warn("runs timed out waiting for the solver", slog.Int64("count", swept))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule timeout sweep: %w", err)
		}
	}
	if cfg.Planner.AssistSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Planner.AssistSchedule, func() {
			dispatched, err := orchestrator.ProcessPendingMeetingAssists(gCtx, time.Now())
			if err != nil {
				logger.Error("meeting assist sweep failed", slog.String("error", err.Error()))
				return
			}
			if dispatched > 0 {
				logger.Info("meeting assists dispatched", slog.Int("count", dispatched))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule assist poller: %w", err)
		}
	}
	scheduler.Start()

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		cronCtx := scheduler.Stop()
		<-cronCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// provider resolves the calendar gateway: an injected one (tests), the
// Google provider when configured, or the local log-only provider.
func (a *application) provider(ctx context.Context, cfg *Config) (gateway.Provider, error) {
	if a.gateway != nil {
		return a.gateway, nil
	}
	if !cfg.Google.Enabled {
		slog.Info("no calendar account configured, provider writes stay local")
		return gateway.NewLocal(), nil
	}

	raw, err := os.ReadFile(cfg.Google.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read provider token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode provider token: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes: []string{"https://www.googleapis.com/auth/calendar.events"},
	}
	return gateway.NewGoogleCalendar(ctx, oauthCfg, &token)
}
