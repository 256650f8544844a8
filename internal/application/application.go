package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"propinvest/internal/config"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/deal"
	"propinvest/internal/domain/service/ranking"
	"propinvest/internal/infrastructure/notifier"
	"propinvest/internal/infrastructure/persistence"
	"propinvest/internal/infrastructure/snapshot"
	"propinvest/internal/server"
	telegram "propinvest/internal/transport/bot"
	"propinvest/internal/transport/bot/handler"
	"propinvest/internal/worker"
	"propinvest/pkg/application/connectors"
	"propinvest/pkg/application/modules"
	"propinvest/pkg/logx"
	"propinvest/pkg/middlewarex"
	"propinvest/pkg/probe"
)

const digestBuffer = 16

func Run(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	// 1. Database
	db := &connectors.Postgres{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	defer db.Close(ctx)

	if cfg.Database.MigrationsFile != "" {
		if err := db.Migrate(ctx, cfg.Database.MigrationsFile); err != nil {
			return fmt.Errorf("db.Migrate: %w", err)
		}
	}

	areaRepo := persistence.NewAreaRepository(db.Client(ctx))
	bracketRepo := persistence.NewBracketRepository(db.Client(ctx))

	// 2. Redis: снимки рейтинга и очередь
	rdb := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	defer rdb.Close(ctx)

	snapshots := snapshot.NewRedisStore(rdb.Client(ctx)).
		WithKey(cfg.Ranking.SnapshotKey).
		WithTTL(cfg.Ranking.SnapshotTTL)

	// 3. Services
	rankingSvc := ranking.NewService(areaRepo, snapshots)

	dealSvc := deal.NewService(bracketRepo).
		WithServiceabilityBuffer(cfg.Finance.ServiceabilityBufferPct).
		WithBracketCacheTTL(cfg.Finance.BracketCacheTTL)

	g, ctx := errgroup.WithContext(ctx)

	// 4. Telegram digest
	if cfg.Bot.Enabled() {
		digest := make(chan entity.RankingSnapshot, digestBuffer)
		rankingSvc.WithDigest(digest)

		bot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		bot.WithTopN(cfg.Ranking.DigestTopN)

		g.Go(func() error {
			if err := bot.Run(ctx, digest); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot.Run: %w", err)
			}

			return nil
		})
	} else {
		log.Info("telegram digest disabled")
	}

	// 5. Queue
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	}

	queue := asynq.NewClient(redisOpt)
	defer func() {
		if err := queue.Close(); err != nil {
			log.Error("queue.Close", logx.Error(err))
		}
	}()

	scheduler := worker.NewRefreshScheduler(queue).
		WithInterval(cfg.Queue.RefreshInterval).
		WithRefreshOnStart(cfg.Queue.RefreshOnStart)

	g.Go(func() error {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler.Run: %w", err)
		}

		return nil
	})

	if cfg.Bot.Enabled() && cfg.Bot.Commands {
		commands, err := telegram.New(ctx, cfg.Bot.Token, cfg.Bot.AdminID,
			handler.New(rankingSvc, dealSvc, scheduler).WithPageSize(cfg.Bot.PageSize),
		)
		if err != nil {
			return fmt.Errorf("telegram.New: %w", err)
		}

		g.Go(func() error {
			if err := commands.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("commands.Run: %w", err)
			}

			return nil
		})
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap.NewProduction: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
		Concurrency:   cfg.Queue.Concurrency,
		Logger:        zapLogger.Sugar(),
	}.Run(ctx, g,
		modules.AsynqQueues{worker.QueueDefault: 1},
		modules.AsynqHandler{
			Pattern: worker.TypeRankingRefresh,
			Handle:  worker.NewRefreshHandler(rankingSvc).Handle,
		},
	)

	// 6. HTTP
	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger(log),
		middlewarex.Recovery,
		middlewarex.Metrics,
		middleware.RealIP,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Trace-Id"},
			ExposedHeaders: []string{"X-Trace-Id"},
			MaxAge:         300, //nolint:mnd
		}),
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
	)

	server.NewServer(
		server.NewRankingServer(rankingSvc, scheduler),
		server.NewDealServer(dealSvc),
	).RegisterRoutes(router)

	modules.HTTPServer{
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}.Run(ctx, g, &http.Server{
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	})

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
		Checks: map[string]probe.Check{
			"database": db.Client(ctx).PingContext,
			"redis": func(ctx context.Context) error {
				return rdb.Client(ctx).Ping(ctx).Err()
			},
		},
	}.Run(ctx, g)

	modules.MetricServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.MetricsListenAddress,
	}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	log.Info("application stopped")

	return nil
}
