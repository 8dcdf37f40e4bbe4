package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rrazong/leaderz-backend/internal/auth"
	"github.com/rrazong/leaderz-backend/internal/broadcast"
	"github.com/rrazong/leaderz-backend/internal/config"
	"github.com/rrazong/leaderz-backend/internal/events"
	"github.com/rrazong/leaderz-backend/internal/messaging"
	"github.com/rrazong/leaderz-backend/internal/metrics"
	"github.com/rrazong/leaderz-backend/internal/middleware"
	"github.com/rrazong/leaderz-backend/internal/service"
	"github.com/rrazong/leaderz-backend/internal/session"
	"github.com/rrazong/leaderz-backend/internal/storage"
	"github.com/rrazong/leaderz-backend/internal/storage/sqlite"
	"github.com/rrazong/leaderz-backend/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	hub := broadcast.NewHub(
		broadcast.WithKeepAlive(cfg.SSEKeepAlive),
		broadcast.WithLogger(logger),
		broadcast.WithMetrics(m),
	)
	defer hub.Close()

	publisher := events.NewPublisher(store, hub, logger, m)

	var sender messaging.Sender
	if cfg.Twilio.Enabled() {
		sender = messaging.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, cfg.Twilio.Channel)
		logger.Info("Replies sent through Twilio", "channel", cfg.Twilio.Channel, "from", cfg.Twilio.PhoneNumber)
	} else {
		sender = messaging.LogSender{Logger: logger}
		logger.Warn("Twilio is not configured; replies are logged only")
	}

	engine := session.New(store, sender, publisher, session.Options{
		TournamentKey:      cfg.TournamentKey,
		LeaderboardBaseURL: cfg.LeaderboardBaseURL,
		Logger:             logger,
		Metrics:            m,
	})

	webhookOpts := messaging.WebhookOptions{PublicURL: cfg.Twilio.WebhookURL, Logger: logger}
	if cfg.Twilio.ValidateSignature {
		webhookOpts.AuthToken = cfg.Twilio.AuthToken
	}
	webhook := messaging.NewWebhookHandler(engine, webhookOpts)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString()
		logger.Warn("AUTH_JWT_SECRET not set; organizer tokens will not survive a restart")
	}
	jwtManager := auth.NewJWTManager(jwtSecret, cfg.Auth.TokenTTL)

	mux := http.NewServeMux()

	mux.Handle("POST /twilio/webhook", webhook)
	mux.Handle("GET /api/stream/{key}", broadcast.SSEHandler(hub, publisher))
	mux.Handle("GET /api/ws/{key}", broadcast.WebSocketHandler(hub, publisher))

	// Register Connect services
	mux.Handle(service.NewLeaderboardServiceHandler(
		service.NewLeaderboardService(store, publisher),
		connect.WithInterceptors(middleware.RPCLogging(logger, m)),
	))
	mux.Handle(service.NewAdminServiceHandler(
		service.NewAdminService(store, publisher),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.RPCLogging(logger, m)),
	))
	mux.Handle(service.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(cfg.Auth.OrganizerPasswordHash), jwtManager, logger),
		connect.WithInterceptors(middleware.RPCLogging(logger, m)),
	))

	mux.Handle("GET /health", healthHandler(store, hub))
	mux.Handle("GET /metrics", metrics.Handler(registry))

	// Add logging and CORS middleware
	handler := middleware.Logging(m)(middleware.CORS(cfg.CORSAllowedOrigins)(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "env", cfg.AppEnv)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Streams never finish on their own; close the hub first so Shutdown
	// is not left waiting on them.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	webhook.Wait()

	logger.Info("Server stopped")
	return nil
}

type healthResponse struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
	Error       string `json:"error,omitempty"`
}

// healthHandler reports storage reachability and the open stream count.
func healthHandler(store storage.Store, hub *broadcast.Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Subscribers: hub.Len()}
		status := http.StatusOK
		if err := store.Ping(r.Context()); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})
}
