package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/config"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/session"
	"github.com/sawdustofmind/matchday-predictor/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newSessionStore(cfg *config.Config, backend, redisAddr string) (session.Store, func(), error) {
	if backend == "memory" {
		log.Warn("Using in-memory sessions, they are lost on restart")
		return session.NewMemoryStore(), func() {}, nil
	}

	store, err := session.NewRedisStore(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close session store", zap.Error(err))
		}
	}, nil
}

func run(cfg *config.Config) int {
	port := flag.String("port", cfg.Web.Port, "Port to listen on")
	apiURL := flag.String("api", cfg.API.URL, "Prediction API URL")
	backend := flag.String("session", cfg.Session.Backend, "Session backend: redis or memory")
	redisAddr := flag.String("redis", cfg.Redis.Addr, "Redis address")
	flag.Parse()

	log.Info("Starting web service",
		zap.String("port", *port),
		zap.String("api_url", *apiURL),
		zap.String("session_backend", *backend),
	)

	store, closeStore, err := newSessionStore(cfg, *backend, *redisAddr)
	if err != nil {
		log.Error("Failed to initialize session store", zap.Error(err))
		return 1
	}
	defer closeStore()

	sessions := session.NewManager(store, session.Options{
		CookieName:   cfg.Session.CookieName,
		TTL:          cfg.Session.TTL,
		CookieSecure: cfg.Session.CookieSecure,
	})

	server, err := web.NewServer(api.NewClient(*apiURL, cfg.API.Timeout), sessions, time.Now)
	if err != nil {
		log.Error("Failed to initialize server", zap.Error(err))
		return 1
	}

	httpServer := &http.Server{
		Addr:              ":" + *port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Web service listening", zap.String("port", *port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info("Shutdown signal received, stopping server")
	case <-errChan:
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down server", zap.Error(err))
	}
	log.Info("Web service stopped")
	return 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := log.Init(cfg.Logs.Development, cfg.Logs.Level); err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	os.Exit(run(cfg))
}
