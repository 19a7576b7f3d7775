package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/centinela/internal/auth"
	"github.com/dropDatabas3/centinela/internal/cache"
	"github.com/dropDatabas3/centinela/internal/config"
	"github.com/dropDatabas3/centinela/internal/http/router"
	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/rate"
	"github.com/dropDatabas3/centinela/internal/store"
	pgdriver "github.com/dropDatabas3/centinela/internal/store/pg"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

func main() {
	// .env es opcional; en producción las vars vienen del entorno.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.example.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.L().Fatal("config", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "centinela",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	tenant.Configure(cfg.Tenant.SuperTenantID, cfg.Tenant.SuperAdmin)

	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Driver,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		log.Fatal("cache", logger.Err(err))
	}
	defer func() { _ = cacheClient.Close() }()

	var creds store.CredentialRepository
	if cfg.Storage.DSN != "" {
		pool, err := pgdriver.Connect(context.Background(), cfg.Storage.DSN)
		if err != nil {
			log.Fatal("postgres", logger.Err(err))
		}
		defer pool.Close()
		if cfg.Storage.Migrate {
			if err := pgdriver.Migrate(context.Background(), pool); err != nil {
				log.Fatal("migrations", logger.Err(err))
			}
		}
		creds = pgdriver.NewCredentialRepo(pool)
	} else {
		log.Warn("sin storage.dsn: login deshabilitado, solo verificación de sesiones")
	}

	sessions := auth.NewStore(cacheClient, auth.StoreOptions{
		Expiry:           cfg.SessionTTL(),
		MultiDevice:      cfg.Session.MultiDevice,
		RefreshThreshold: cfg.SessionRefreshThreshold(),
	})
	directory := auth.NewDirectory(sessions)
	limiter := rate.NewCacheLimiter(cacheClient, cfg.Rate.FailOpen)
	metricsHandler := metrics.Register(prometheus.DefaultRegisterer)

	handler := router.New(router.Deps{
		Config:      cfg,
		Cache:       cacheClient,
		Sessions:    sessions,
		Directory:   directory,
		Credentials: creds,
		Limiter:     limiter,
		Metrics:     metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("centinela up", logger.Any("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server", logger.Err(err))
	}
}
