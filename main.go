package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/grocery-form/internal/config"
	"example.com/grocery-form/internal/infra/catalogapi"
	"example.com/grocery-form/internal/infra/httpclient"
	"example.com/grocery-form/internal/infra/security"
	apihttp "example.com/grocery-form/internal/interface/http"
	"example.com/grocery-form/internal/logging"
	formuc "example.com/grocery-form/internal/usecase/productform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(logging.Options{Development: cfg.Development(), Filename: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	productRepo := catalogapi.NewProductRepository(catalogapi.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: httpclient.New(httpclient.Options{Timeout: cfg.HTTPTimeout}),
		Logger:     logger.Named("catalog"),
	})

	sessions := formuc.NewStore()
	defer sessions.Close()

	api, err := apihttp.NewAPI(apihttp.Dependencies{
		FormService:   formuc.NewService(productRepo, logger.Named("form")),
		Sessions:      sessions,
		TokenService:  security.NewSessionTokenService(cfg.SessionSecret, 7*24*time.Hour),
		Logger:        logger.Named("http"),
		MaxUploadSize: cfg.MaxUploadSize,
		SecureCookie:  cfg.SecureCookie,
		ImageBaseURL:  cfg.APIBaseURL + "/",
	})
	if err != nil {
		return err
	}

	sched := cron.New()
	if _, err := sched.AddFunc("@every 1m", func() {
		if n := sessions.Sweep(cfg.SessionIdle); n > 0 {
			logger.Debug("idle sessions evicted", zap.Int("count", n), zap.Int("remaining", sessions.Len()))
		}
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		sched.Start()
		<-egCtx.Done()
		<-sched.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
