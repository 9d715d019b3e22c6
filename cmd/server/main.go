package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/norsu/hrportal/docs"
	"github.com/norsu/hrportal/internal/api"
	"github.com/norsu/hrportal/internal/api/handler"
	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/config"
	"github.com/norsu/hrportal/internal/core/ports"
	"github.com/norsu/hrportal/internal/core/service"
	"github.com/norsu/hrportal/internal/infrastructure/db/mongo"
	"github.com/norsu/hrportal/internal/infrastructure/db/postgres"
	"github.com/norsu/hrportal/internal/infrastructure/db/redis"
	"github.com/norsu/hrportal/internal/infrastructure/storage"
	"github.com/norsu/hrportal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// backend is the repository set of whichever database driver is configured.
type backend struct {
	identities   ports.IdentityRepository
	profiles     ports.ProfileRepository
	jobs         ports.JobRepository
	applications ports.ApplicationRepository
	objects      ports.ObjectStorage

	name  string
	ping  handler.PingFunc
	close func(context.Context) error
}

// @title          NORSU HR Portal API
// @version        1.0
// @description    Recruitment portal: job postings, applications and HR review.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "hrportal",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	provisioner := service.NewProvisioner(cfg.Session.EmailHeuristic)
	if provisioner.HeuristicEnabled() {
		log.Warn().Msg("email heuristic provisioning is enabled: hr and admin roles are granted from the email address on first login")
	}

	db, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.close(closeCtx); err != nil {
			log.Error().Err(err).Str("driver", db.name).Msg("close database")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	sessions := redis.NewSessionStore(rdb)
	limiter := redis.NewRateLimiter(rdb, cfg.Session.MaxAttempts, cfg.Session.Window)
	feed := redis.NewChangeFeed(rdb, logger.Component("change_feed"))

	var images ports.ImageStorage = storage.NewObjectImages(db.objects)
	if cfg.Storage.CloudinaryURL != "" {
		cld, err := storage.NewCloudinaryImages(cfg.Storage.CloudinaryURL, cfg.Storage.CloudinaryFolder)
		if err != nil {
			return err
		}
		images = cld
		log.Info().Str("folder", cfg.Storage.CloudinaryFolder).Msg("job images hosted on cloudinary")
	}

	identity := service.NewIdentityService(db.identities, db.profiles, provisioner, sessions, limiter, service.IdentityConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.Session.TTL,
	}, logger.Component("identity"))
	resolver := service.NewRoleResolver(db.identities, db.profiles, provisioner, logger.Component("role_resolver"))
	resolver.OnProvision(metrics.ObserveProvisioning)
	signer := service.NewURLSigner(cfg.JWTSecret, cfg.Storage.SignedURLTTL)

	e := api.NewRouter(api.Deps{
		Identity:     identity,
		Resolver:     resolver,
		Gate:         service.NewGate(identity, resolver, logger.Component("gate")),
		Admin:        service.NewAdminService(db.identities, db.profiles, db.applications, db.jobs, db.objects, provisioner, logger.Component("admin")),
		HR:           service.NewHRService(db.applications, db.jobs, db.objects, feed, logger.Component("hr")),
		Jobs:         service.NewJobService(db.jobs, db.applications, images, logger.Component("jobs")),
		Applications: service.NewApplicationService(db.applications, db.jobs, db.profiles, db.objects, signer, feed, cfg.Storage.MaxResumeBytes, logger.Component("applications")),
		Objects:      db.objects,
		Signer:       signer,
		Feed:         feed,
		Health: map[string]handler.Pinger{
			db.name: db.ping,
			"redis": handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		CookieSecure: cfg.Session.CookieSecure,
		BodyLimit:    "8M",
		Log:          logger.Component("http"),
	})

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("postgres handle: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		store := postgres.NewStore(db)
		log.Info().Msg("postgres connected")
		return &backend{
			identities:   store.Identities,
			profiles:     store.Profiles,
			jobs:         store.Jobs,
			applications: store.Applications,
			objects:      store.Objects,
			name:         "postgres",
			ping:         sqlDB.PingContext,
			close:        func(context.Context) error { return sqlDB.Close() },
		}, nil

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		store, err := mongo.NewStore(db)
		if err == nil {
			err = store.EnsureIndexes(ctx)
		}
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
		return &backend{
			identities:   store.Identities,
			profiles:     store.Profiles,
			jobs:         store.Jobs,
			applications: store.Applications,
			objects:      store.Objects,
			name:         "mongodb",
			ping:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:        client.Disconnect,
		}, nil
	}
}
