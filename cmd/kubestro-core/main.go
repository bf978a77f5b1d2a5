package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kubestro/core/pkg/api"
	"github.com/kubestro/core/pkg/async"
	"github.com/kubestro/core/pkg/auth"
	"github.com/kubestro/core/pkg/catalog"
	"github.com/kubestro/core/pkg/config"
	"github.com/kubestro/core/pkg/observability"
	"github.com/kubestro/core/pkg/oidc"
	"github.com/kubestro/core/pkg/session"
	"github.com/kubestro/core/pkg/setup"
	"github.com/kubestro/core/pkg/user"
)

// catalogRefreshSchedule re-pulls repository indexes whose cache expired.
const catalogRefreshSchedule = "0 * * * *"

// backgroundTaskTimeout bounds a single fire-and-forget task.
const backgroundTaskTimeout = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration is invalid")
	}

	log := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogJSON)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("opening database failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.WithError(err).Fatal("database is unreachable")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("redis URL is invalid")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Fatal("redis is unreachable")
	}

	users := user.NewPostgresRepository(db)
	sessions := session.NewStore(redisClient)

	authSvc, err := auth.NewService(users, auth.NewArgon2Hasher(), auth.NewPolicyValidator(), log)
	if err != nil {
		log.WithError(err).Fatal("building auth service failed")
	}

	setupMgr := setup.NewManager(users, authSvc, cfg.Admin.Email, cfg.Admin.Password, log)
	if err := setupMgr.Initialize(context.Background()); err != nil {
		log.WithError(err).Fatal("setup state probe failed")
	}
	log.WithField("status", setupMgr.Status().String()).Info("setup state resolved")

	exec := async.NewGoroutineExecutor(backgroundTaskTimeout, log)
	catalogSvc := catalog.NewService(
		catalog.NewPostgresStore(db),
		catalog.NewCache(redisClient),
		catalog.NewHTTPFetcher(),
		exec,
		log,
	)

	deps := api.Dependencies{
		Users:    users,
		Auth:     authSvc,
		Sessions: sessions,
		Setup:    setupMgr,
		Catalog:  catalogSvc,
		Log:      log,
	}

	registry := prometheus.NewRegistry()
	deps.Metrics = observability.NewMetrics(registry)

	if oidcCfg := oidc.LoadConfig(log); oidcCfg != nil {
		client, err := oidc.NewClient(context.Background(), oidcCfg)
		if err != nil {
			log.WithError(err).Fatal("OIDC provider discovery failed")
		}
		deps.OIDCStart = client
		deps.OIDCAuth = oidc.NewService(users, client, oidcCfg, log)
		log.WithField("provider", oidcCfg.ConfigURL).Info("federated login enabled")
	}

	server := api.NewServer(deps)

	// Liveness, readiness and metrics stay off the public listener.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	observability.RegisterMetricsEndpoint(healthMux, registry)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(catalogRefreshSchedule, func() {
		if err := catalogSvc.RefreshCache(context.Background(), false); err != nil {
			log.WithError(err).Warn("scheduled catalog refresh failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("scheduling catalog refresh failed")
	}
	scheduler.Start()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.HealthAddr(),
		Handler: healthMux,
	}

	go func() {
		log.WithField("addr", healthServer.Addr).Info("health listener starting")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("health listener failed")
		}
	}()
	go func() {
		log.WithField("addr", httpServer.Addr).Info("API listener starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("API listener failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API shutdown was not clean")
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("health shutdown was not clean")
	}
	exec.Wait()

	log.Info("stopped")
}
