package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"collabboard/internal/agent"
	"collabboard/internal/auth"
	"collabboard/internal/config"
	"collabboard/internal/handlers"
	"collabboard/internal/llm"
	"collabboard/internal/logging"
	"collabboard/internal/middleware"
	"collabboard/internal/object"
	"collabboard/internal/tools"
	"collabboard/internal/transport"
)

const (
	janitorInterval = 5 * time.Minute
	limiterMaxIdle  = time.Hour
	shutdownTimeout = 10 * time.Second
)

// app holds the wired server.
type app struct {
	server  *http.Server
	ws      *transport.Server
	limiter *middleware.ClientLimiter
	logger  *zap.Logger
}

// newApp wires every component from cfg around the given model client.
func newApp(cfg *config.Config, client llm.Client, logger *zap.Logger) (*app, error) {
	verifier, err := auth.NewVerifier(cfg.Auth, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	catalog, err := tools.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("tool catalog: %w", err)
	}

	orch := agent.New(client, catalog, logger, agent.Options{
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		MaxBulkCount: cfg.Limits.MaxBulkCount,
	})

	commands := handlers.NewCommandHandler(orch, object.NewValidator(), agent.RequestLimits{
		MaxBoardObjects: cfg.Limits.MaxBoardObjects,
		MaxCommandChars: cfg.Limits.MaxCommandChars,
	}, logger)

	limiter := middleware.NewClientLimiter(cfg.Limits.RateLimitPerMinute, cfg.Limits.RateLimitBurst)

	wsOpts := transport.DefaultOptions()
	wsOpts.MaxMessageBytes = cfg.Limits.MaxBodyBytes
	wsOpts.MessagesPerMinute = cfg.Limits.RateLimitPerMinute
	wsOpts.Burst = cfg.Limits.RateLimitBurst
	ws := transport.NewServer(handlers.NewMessageRouter(commands, logger), verifier, limiter, cfg.AllowedOrigins, wsOpts, logger)

	router := handlers.NewRouter(handlers.Deps{
		Commands:       commands,
		Verifier:       verifier,
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.Limits.MaxBodyBytes,
		Logger:         logger,
		WebSocket:      ws,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}
	srv.RegisterOnShutdown(ws.Shutdown)

	return &app{server: srv, ws: ws, limiter: limiter, logger: logger}, nil
}

// run serves until ctx is done, then shuts down gracefully.
func (a *app) run(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.limiter.RunJanitor(gctx, janitorInterval, limiterMaxIdle)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runServer builds the logger, model client and app from cfg and serves.
func runServer(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}

	a, err := newApp(cfg, client, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.run(ctx, ln)
}
