package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "bmitrend/internal/adapter/http"
	"bmitrend/internal/adapter/memory"
	"bmitrend/internal/adapter/postgres"
	"bmitrend/internal/adapter/sso"
	"bmitrend/internal/app"
	"bmitrend/internal/config"
	"bmitrend/internal/domain"
	"bmitrend/internal/logger"
	"bmitrend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type store interface {
	domain.UserRepository
	domain.MeasurementRepository
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.New(os.Stderr, 0).Fatal("load config", slog.Any("error", err))
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	log.SetDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db store
	switch cfg.Store {
	case config.StoreMemory:
		db = memory.New()
		log.Warn("using in-memory store, data is lost on exit")
	default:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db open", slog.Any("error", err))
		}
		defer func() { _ = pg.Close() }()
		db = pg
	}

	var provider app.IdentityProvider
	if cfg.OIDC.Enabled() {
		p, err := sso.New(ctx, sso.Config{
			IssuerURL:    cfg.OIDC.Issuer,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
		})
		if err != nil {
			log.Fatal("oidc setup", slog.Any("error", err))
		}
		provider = p
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	identitySvc := app.NewIdentityService(db, provider).WithMetrics(rec)
	userSvc := app.NewUserService(db)
	measurementSvc := app.NewMeasurementService(db, db).WithMetrics(rec)

	h := adapthttp.New(identitySvc, userSvc, measurementSvc).
		WithLogger(log.Logger).
		WithMetrics(rec, metrics.Handler(reg)).
		Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", slog.String("addr", cfg.Addr), slog.Bool("sso_enabled", provider != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", slog.Any("error", err))
	}
}
