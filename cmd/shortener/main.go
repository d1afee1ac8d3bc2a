// Package main запускает HTTP и gRPC серверы сервиса коротких ссылок.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/tempizhere/linkstat/internal/app"
	"github.com/tempizhere/linkstat/internal/cache"
	"github.com/tempizhere/linkstat/internal/config"
	linkgrpc "github.com/tempizhere/linkstat/internal/grpc"
	"github.com/tempizhere/linkstat/internal/i18n"
	"github.com/tempizhere/linkstat/internal/idgen"
	applog "github.com/tempizhere/linkstat/internal/log"
	"github.com/tempizhere/linkstat/internal/middleware"
	"github.com/tempizhere/linkstat/internal/ratelimit"
	"github.com/tempizhere/linkstat/internal/repository"
	"github.com/tempizhere/linkstat/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		panic(err)
	}
	logger.Info("Server stopped")
}

// components собранные зависимости сервиса
type components struct {
	svc       *service.Service
	localizer *i18n.Localizer
	subnet    *middleware.TrustedSubnet
	closers   []func() error
}

func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// newComponents выбирает хранилище, кэш и лимитеры по конфигурации
func newComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	c := &components{}

	var repo repository.Repository
	if cfg.DatabaseDSN != "" {
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		pg, err := repository.NewPostgresRepository(db, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		repo = pg
		logger.Info("Using PostgreSQL storage")
	} else {
		repo = repository.NewMemoryRepository()
		logger.Info("Using in-memory storage")
	}

	var (
		linkCache cache.Cache
		limiters  service.Limiters
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		c.closers = append(c.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		linkCache = cache.NewRedisCache(client, cfg.CacheTTL)
		limiters = service.Limiters{
			Shorten:  ratelimit.NewRedisLimiter(client, ratelimit.PrefixShorten, cfg.ShortenLimit, cfg.RateLimitWindow),
			Redirect: ratelimit.NewRedisLimiter(client, ratelimit.PrefixRedirect, cfg.RedirectLimit, cfg.RateLimitWindow),
		}
		logger.Info("Using Redis cache and rate limits", zap.String("address", cfg.RedisAddr))
	} else {
		linkCache = cache.NewMemoryCache(cfg.CacheTTL)
		limiters = service.Limiters{
			Shorten:  ratelimit.NewMemoryLimiter(cfg.ShortenLimit, cfg.RateLimitWindow),
			Redirect: ratelimit.NewMemoryLimiter(cfg.RedirectLimit, cfg.RateLimitWindow),
		}
	}

	localizer, err := i18n.NewLocalizer()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	subnet, err := middleware.ParseTrustedSubnet(cfg.TrustedSubnet)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.svc = service.NewService(repo, linkCache, idgen.NewShortUUIDGenerator(idgen.DefaultLength), limiters, logger,
		service.Config{
			BaseURL:      cfg.BaseURL,
			StoreTimeout: cfg.StoreTimeout,
			MaxAttempts:  service.DefaultMaxAttempts,
		})
	c.localizer = localizer
	c.subnet = subnet
	return c, nil
}

// run запускает HTTP и gRPC серверы и останавливает их при отмене ctx
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	c, err := newComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	httpListener, err := net.Listen("tcp", cfg.RunAddr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	httpServer := &http.Server{
		Handler:           app.NewApp(c.svc, c.localizer, logger).Router(c.subnet),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var (
		grpcListener net.Listener
		grpcServer   *grpc.Server
	)
	if cfg.GRPCAddr != "" {
		grpcListener, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			_ = httpListener.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcServer = linkgrpc.NewGRPCServer(linkgrpc.NewServer(c.svc, c.localizer, logger), c.subnet, logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", httpListener.Addr().String()), zap.String("base_url", cfg.BaseURL))
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcServer != nil {
		g.Go(func() error {
			logger.Info("Starting gRPC server", zap.String("address", grpcListener.Addr().String()))
			if err := grpcServer.Serve(grpcListener); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
