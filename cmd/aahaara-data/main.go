package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aahaara-data/internal/config"
	"aahaara-data/internal/database"
	httpapi "aahaara-data/internal/http"
	"aahaara-data/internal/logger"
	"aahaara-data/internal/metrics"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/objectstore"
	"aahaara-data/internal/repository"
	"aahaara-data/internal/service"
	"aahaara-data/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "aahaara-data")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("aahaara-data exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set, tokens are signed with the development key", zap.String("env", cfg.Env))
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("Canonical store ready", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// tokens are rejected while the denylist is unreachable, so keep serving and say so
		log.Warn("Redis unreachable, authenticated requests will fail until it recovers", zap.Error(err))
	}
	denylist := store.NewTokenDenylist(store.NewRedisKV(redisClient))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	syncer, mirrorOn := newSyncer(cfg.Mirror, log, m)
	if mirrorOn {
		syncer.CheckReachable(ctx)
	}

	objects, err := newObjectStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	users := repository.NewPostgresUsersRepository(db)
	profiles := repository.NewPostgresProfilesRepository(db)
	patients := repository.NewPostgresPatientsRepository(db)
	analyses := repository.NewPostgresAnalysesRepository(db)
	consultations := repository.NewPostgresConsultationsRepository(db)
	charts := repository.NewPostgresDietChartsRepository(db)
	foods := repository.NewPostgresFoodItemsRepository(db)
	recs := repository.NewPostgresRecommendationsRepository(db)

	var checker httpapi.MirrorChecker
	if mirrorOn {
		checker = syncer
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Auth:            service.NewAuthService(users, syncer, denylist, cfg.Auth, log),
		Profiles:        service.NewProfileService(users, profiles, syncer, log),
		Patients:        service.NewPatientService(users, profiles, patients, analyses, consultations, syncer, log),
		Analyses:        service.NewAnalysisService(patients, analyses, consultations, syncer, log),
		Attachments:     service.NewAttachmentService(objects, patients, log),
		DietCharts:      service.NewDietChartService(charts, patients, profiles, analyses, recs, syncer, log),
		Foods:           service.NewFoodService(foods, log),
		Recommendations: service.NewRecommendationService(recs, foods, log),
		Health:          httpapi.NewHealthHandler(db, checker, log),
		Metrics:         m,

		AllowedOrigins: cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         log,
	})

	srv := service.NewServer(cfg.HTTP.Addr, router, shutdownGrace, log)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("Shutdown complete")
	return nil
}

// newSyncer builds the mirror syncer. When mirroring is off the syncer has no store and
// every sync is skipped.
func newSyncer(cfg config.MirrorConfig, log *zap.Logger, m *metrics.Metrics) (*mirror.Syncer, bool) {
	if !cfg.Enabled && cfg.Backend != "memory" {
		log.Info("Mirror sync disabled")
		return mirror.NewSyncer(nil, cfg.Timeout, log, m), false
	}
	var st mirror.Store
	switch cfg.Backend {
	case "memory":
		st = mirror.NewMemoryStore()
		log.Warn("Mirror rows are kept in process memory only")
	default:
		st = mirror.NewPostgRESTStore(cfg.URL, cfg.Key, cfg.Timeout)
	}
	st = mirror.NewBreakerStore(st, cfg.BreakerFailures, cfg.BreakerCooldown, log)
	return mirror.NewSyncer(st, cfg.Timeout, log, m), true
}

// newObjectStore returns nil when attachments are not configured; the attachment
// endpoints then answer 503.
func newObjectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (objectstore.Store, error) {
	switch cfg.Storage.Backend {
	case "":
		log.Info("Attachment storage disabled")
		return nil, nil
	case "supabase":
		s, err := objectstore.NewSupabaseStore(cfg.Mirror.URL, cfg.Mirror.Key, cfg.Storage.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := objectstore.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.Endpoint)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
