package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/foodexpress/foodexpress-backend/internal/cron"
	"github.com/foodexpress/foodexpress-backend/internal/dispatch"
	"github.com/foodexpress/foodexpress-backend/internal/notifications"
	"github.com/foodexpress/foodexpress-backend/pkg/config"
	"github.com/foodexpress/foodexpress-backend/pkg/db"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
	"github.com/foodexpress/foodexpress-backend/pkg/metrics"
	"github.com/foodexpress/foodexpress-backend/pkg/migrate"
	"github.com/foodexpress/foodexpress-backend/pkg/pubsub"
	"github.com/foodexpress/foodexpress-backend/pkg/redis"
	"github.com/foodexpress/foodexpress-backend/pkg/routing"
)

const dispatchLockName = "dispatch_pass"

func main() {
	logg := logger.New(logger.Options{ServiceName: "dispatch-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "dispatch-worker"

	logg = logger.New(logger.Options{
		ServiceName: "dispatch-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var publisher *pubsub.Client
	if cfg.GCP.ProjectID != "" {
		publisher, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "no gcp project configured, push notifications disabled")
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	sinkParams := notifications.ServiceParams{
		Tx:     dbClient,
		Repo:   notificationsRepo,
		Logger: logg,
	}
	if publisher != nil {
		sinkParams.Publisher = notifications.NewPushPublisher(publisher.NotificationPublisher())
	}
	sink, err := notifications.NewService(sinkParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	routingClient := routing.NewClient(
		routing.WithBaseURL(cfg.Routing.BaseURL),
		routing.WithHTTPClient(&http.Client{Timeout: cfg.Routing.Timeout}),
	)

	dispatchMetrics := metrics.NewDispatchMetrics(prometheus.DefaultRegisterer)
	dispatcher, err := dispatch.NewService(dispatch.ServiceParams{
		Tx:       dbClient,
		Repo:     dispatch.NewRepository(dbClient.DB()),
		Distance: routingClient,
		Sink:     sink,
		Metrics:  dispatchMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	dispatchJob, err := cron.NewDispatchPassJob(cron.DispatchPassJobParams{
		Logger:     logg,
		Dispatcher: dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch job", err)
		os.Exit(1)
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notificationsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(dispatchLockName), cfg.Dispatch.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create run lock", err)
		os.Exit(1)
	}

	cronService, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(dispatchJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Dispatch.PassInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting dispatch worker")

	opsServer := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: newOpsRouter(dbClient, redisClient),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return cronService.Run(groupCtx)
	})
	group.Go(func() error {
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return opsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "dispatch worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "dispatch worker shutting down gracefully")
}

func newOpsRouter(dbClient *db.Client, redisClient *redis.Client) http.Handler {
	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := dbClient.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(r.Context()); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	return router
}
