package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/rankcheck/api"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/location"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/rank"
	"github.com/use-agent/rankcheck/serp"
	"github.com/use-agent/rankcheck/session"
	"github.com/use-agent/rankcheck/tracker"
	"github.com/use-agent/rankcheck/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("rankcheck starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"ordering", cfg.Session.Ordering,
	)
	if cfg.Provider.APIKey == "" {
		slog.Warn("RANKCHECK_SERPAPI_KEY is not set; lookups will fail with PROVIDER_UNAVAILABLE")
	}

	// ── 3. Location directory (one-shot background load) ────────────
	dir := location.NewDirectory(cfg.Geography.URL, nil, cfg.Geography.Timeout)
	go dir.Load(context.Background())

	// ── 4. Provider client + rank engine ────────────────────────────
	engine := rank.NewEngine(serp.NewClient(cfg.Provider, nil))

	// ── 5. Session registry ─────────────────────────────────────────
	policy, err := tracker.ParsePolicy(cfg.Session.Ordering)
	if err != nil {
		slog.Error("invalid ordering policy", "error", err)
		os.Exit(1)
	}
	sender := webhook.NewSender(cfg.Webhook.Secret, cfg.Webhook.Timeout)
	registry := session.NewRegistry(cfg.Session.MaxSessions, cfg.Session.TTL, func(id, callbackURL string) *tracker.Tracker {
		opts := []tracker.Option{
			tracker.WithPolicy(policy),
			tracker.WithTimeout(cfg.Provider.Timeout),
			tracker.WithCompletionHook(func(st models.LookupState) {
				attrs := []any{
					"session_id", id,
					"sequence", st.Sequence,
					"status", st.Status,
					"error_code", st.ErrorCode,
				}
				if st.MatchedPosition != nil {
					attrs = append(attrs, "matched_position", *st.MatchedPosition)
				}
				slog.Info("lookup completed", attrs...)
				if callbackURL != "" {
					sender.DeliverAsync(callbackURL, webhook.NewLookupEvent(id, st))
				}
			}),
		}
		return tracker.New(engine, opts...)
	})
	defer registry.Close()

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(engine, dir, registry, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// registry.Close() runs via defer and cancels in-flight session lookups.
	slog.Info("rankcheck stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
