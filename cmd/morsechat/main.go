package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"morsechat/internal/auth"
	"morsechat/internal/chat"
	"morsechat/internal/config"
	"morsechat/internal/httpapi"
	"morsechat/internal/logging"
	"morsechat/internal/metrics"
	"morsechat/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, log *logrus.Entry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messages, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := messages.Ping(pingCtx); err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Warn("message store not reachable at startup")
	}
	cancel()

	m := metrics.New()
	hub := chat.NewHub(chat.Options{
		Store:        messages,
		Recorder:     m,
		Logger:       log,
		HistoryLimit: cfg.HistoryLimit,
	})
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	var verifier *auth.Verifier
	if cfg.AuthEnabled() {
		verifier = auth.NewVerifier(cfg.SupabaseJWTSecret)
	} else {
		log.Warn("SUPABASE_JWT_SECRET not set; room history and websocket are unauthenticated")
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Hub:            hub,
		Store:          messages,
		Verifier:       verifier,
		Metrics:        m,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		HistoryLimit:   cfg.HistoryLimit,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "store": cfg.StoreDriver}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-hubDone
	return nil
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		client, err := store.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client, cfg.HistoryLimit), func() { _ = client.Close() }, nil
	case config.DriverSupabase:
		s, err := store.NewSupabaseStore(store.SupabaseConfig{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return store.NewMemoryStore(cfg.HistoryLimit), func() {}, nil
	}
}
