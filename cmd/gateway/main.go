package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RCorazao/stopgame-client/internal/cache"
	"github.com/RCorazao/stopgame-client/internal/config"
	"github.com/RCorazao/stopgame-client/internal/httpapi"
	"github.com/RCorazao/stopgame-client/internal/session"
	"github.com/RCorazao/stopgame-client/internal/signalr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	sessionCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		logger.Fatal("failed to open session cache", zap.Error(err))
	}
	defer sessionCache.Close()

	transport := signalr.NewClient(cfg.HubURL, logger.Named("signalr"))
	sess := session.New(transport, session.Options{
		Logger: logger.Named("session"),
		Cache:  sessionCache,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The hub may be down at boot; the gateway still serves and the UI can
	// retry through /session/foreground.
	if err := sess.Connect(ctx); err != nil {
		logger.Warn("initial connect failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.SetupRoutes(sess, logger.Named("httpapi")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gateway listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Disconnect(shutdownCtx); err != nil {
			logger.Warn("disconnect on shutdown failed", zap.Error(err))
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("gateway exited", zap.Error(err))
	}
}
