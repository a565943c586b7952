// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eduworld/portal/internal/chatbot"
	"github.com/eduworld/portal/internal/config"
	"github.com/eduworld/portal/internal/form"
	"github.com/eduworld/portal/internal/handler"
	natsclient "github.com/eduworld/portal/internal/nats"
	"github.com/eduworld/portal/internal/service"
	"github.com/eduworld/portal/internal/store"
	"github.com/eduworld/portal/pkg/logger"
	"github.com/eduworld/portal/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.NewFromEnv(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "eduworld-portal", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	// Knowledge base
	kb := chatbot.DefaultKnowledgeBase()
	if cfg.KnowledgeFile != "" {
		loaded, err := chatbot.LoadKnowledgeBase(cfg.KnowledgeFile)
		if err != nil {
			return err
		}
		kb = loaded
	}
	resolver := chatbot.NewResolver(kb)
	log.Info("knowledge base loaded",
		zap.Int("topics", len(kb.Topics)),
		zap.String("file", cfg.KnowledgeFile),
	)

	// Storage and event feed
	var (
		users      store.UserStore = store.NewMemoryUserStore()
		publisher  service.EventPublisher
		natsClient *natsclient.Client
	)
	if cfg.NATSURL != "" {
		client, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			Name:     "eduworld-portal",
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer client.Close()
		natsClient = client

		events := natsclient.NewEventPublisher(client)
		if err := events.EnsureStream(ctx); err != nil {
			return err
		}
		publisher = events

		kvUsers, err := natsclient.NewUserStore(ctx, client)
		if err != nil {
			return err
		}
		users = kvUsers
	} else {
		log.Warn("NATS_URL not set, users are kept in memory and chat events are not published")
	}

	// Initialize services
	chatSvc := service.NewChatService(resolver, publisher, log, service.ChatConfig{
		TypingDelay: chatbot.RandomDelay(cfg.TypingDelayMin, cfg.TypingDelayMax),
		StalePolicy: chatbot.ParseStalePolicy(cfg.StaleResponses),
		IdleTTL:     cfg.SessionIdleTTL,
	})
	accountSvc := service.NewAccountService(users, form.NewValidator(), log, service.AccountConfig{
		JWTSecret:     cfg.JWTSecret,
		JWTExpiration: cfg.JWTExpiration,
	})
	go chatSvc.Run(ctx, cfg.SessionSweepPeriod)

	router := handler.NewRouter(handler.RouterConfig{
		Health:             handler.NewHealthHandler(natsClient, kb),
		Chat:               handler.NewChatHandler(chatSvc, resolver, log),
		Auth:               handler.NewAuthHandler(accountSvc, log),
		Logger:             log,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
		AuthRateLimit:      cfg.AuthRateLimitRequests,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	cancel()
	chatSvc.Shutdown()

	log.Info("server stopped")
	return nil
}
