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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/yummy_recipes/internal/config"
	"github.com/Skotchmaster/yummy_recipes/internal/events"
	"github.com/Skotchmaster/yummy_recipes/internal/handlers"
	"github.com/Skotchmaster/yummy_recipes/internal/hash"
	"github.com/Skotchmaster/yummy_recipes/internal/jobs"
	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/metrics"
	loggingmw "github.com/Skotchmaster/yummy_recipes/internal/middleware/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/repo"
	"github.com/Skotchmaster/yummy_recipes/internal/revocation"
	"github.com/Skotchmaster/yummy_recipes/internal/search"
	"github.com/Skotchmaster/yummy_recipes/internal/service"
	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
	httpserver "github.com/Skotchmaster/yummy_recipes/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := config.InitDB(initCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("db_close_failed", "error", err)
			}
		}
	}()

	store := repo.New(db)
	ready := map[string]httpserver.Pinger{
		"database": httpserver.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}

	var ledger revocation.Ledger = store
	if cfg.RedisAddr != "" {
		rdb, err := revocation.NewRedisClient(initCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		ledger = revocation.NewRedisLedger(ledger, rdb, cfg.TokenTTL)
		ready["redis"] = httpserver.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info("revocation_cache_enabled", "backend", "redis", "addr", cfg.RedisAddr)
	}
	if cfg.RevocationCacheSize > 0 {
		ledger = revocation.NewLocalLedger(ledger, cfg.RevocationCacheSize, cfg.TokenTTL)
	}

	codec, err := tokens.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		if err := events.EnsureTopic(cfg.KafkaBrokers[0], cfg.KafkaTopic); err != nil {
			log.Warn("kafka_topic_setup_failed", "topic", cfg.KafkaTopic, "error", err)
		}
		prod := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := prod.Close(); err != nil {
				log.Warn("kafka_close_failed", "error", err)
			}
		}()
		publisher = prod
	}

	recipes := &service.RecipeService{Categories: store, Recipes: store, Events: publisher}
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			return err
		}
		index := search.NewRecipeIndex(es, cfg.ESIndex)
		if err := index.EnsureIndex(initCtx); err != nil {
			return err
		}
		recipes.Search = index
		recipes.Index = index
	}

	m := metrics.New()
	auth := &service.AuthService{
		Users:  store,
		Ledger: ledger,
		Hasher: hash.NewHasher(cfg.BcryptCost),
		Tokens: codec,
		Events: publisher,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(log, m))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &handlers.AuthHandler{Svc: auth, Metrics: m},
		CategoryHandler: &handlers.CategoryHandler{Svc: &service.CategoryService{Store: store, Events: publisher}},
		RecipeHandler:   &handlers.RecipeHandler{Svc: recipes},
		Gate:            auth,
		Metrics:         m,
		Ready:           ready,
	})

	scheduler, err := jobs.Start(cfg.PurgeSchedule, &jobs.PurgeJob{Store: store, Log: log.With("job", "purge_revoked")})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server_started", "addr", cfg.ServerAddr, "env", cfg.AppEnv)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting_down")

		<-scheduler.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown_complete")
	return nil
}
