// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/memory"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	authredis "github.com/gatehouse/gatehouse/internal/auth/redis"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
	"github.com/gatehouse/gatehouse/internal/web"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication HTTP server",
		Long: `Start the Gatehouse HTTP server along with its observability
endpoints. Configuration comes from defaults, then the config file,
then flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags().Changed("config"), cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&configFile, "config", "gatehouse.yaml", "config file path")
	cmd.Flags().String("server.addr", defaults.Server.Addr, "HTTP listen address")
	cmd.Flags().StringSlice("server.allowed_origins", defaults.Server.AllowedOrigins, "CORS allowed origins")
	cmd.Flags().Bool("server.secure_cookies", defaults.Server.SecureCookies, "mark session cookies Secure")
	cmd.Flags().String("observability.addr", defaults.Observability.Addr, "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("store.backend", defaults.Store.Backend, "storage backend (postgres, redis, memory)")
	cmd.Flags().String("store.database_url", defaults.Store.DatabaseURL, "PostgreSQL connection string")
	cmd.Flags().String("store.redis_addr", defaults.Store.RedisAddr, "Redis address")
	cmd.Flags().String("log.format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("gatehouse", version, cfg.Log.Format)
	logger := slog.Default()

	logger.Info("starting gatehouse",
		"addr", cfg.Server.Addr,
		"backend", cfg.Store.Backend,
		"log_format", cfg.Log.Format,
	)

	users, sessions, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	manager, err := auth.NewSessionManagerWithLogger(sessions, logger)
	if err != nil {
		return err
	}
	svc, err := auth.NewAuthServiceWithLogger(users, manager, auth.NewBcryptHasher(), logger)
	if err != nil {
		return err
	}

	webServer := web.NewServer(svc, web.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  cfg.Server.SecureCookies,
		Logger:         logger,
	})
	webErrCh := webServer.Start()

	var obsServer *observability.Server
	var obsErrCh <-chan error
	if cfg.Observability.Addr != "" {
		obsServer = observability.NewServer(cfg.Observability.Addr, func() bool { return true })
		auth.RegisterMetrics(obsServer.Registry())
		obsErrCh, err = obsServer.Start()
		if err != nil {
			shutdownWeb(webServer, logger)
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-webErrCh:
		if err != nil {
			logger.Error("web server failed", "error", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownWeb(webServer, logger)
	if obsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("observability server shutdown failed", "error", err)
		}
	}
	return nil
}

func shutdownWeb(srv *web.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("web server shutdown failed", "error", err)
	}
}

// buildRepositories wires the configured storage backend. The returned
// cleanup closes whatever connections were opened.
func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (auth.UserRepository, auth.SessionRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := store.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("connected to postgres")
		return authpg.NewUserRepository(pool), authpg.NewSessionRepository(pool), pool.Close, nil

	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Store.RedisAddr})
		if err := pingRedis(ctx, client); err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		logger.Info("connected to redis", "addr", cfg.Store.RedisAddr)
		cleanup := func() { _ = client.Close() }
		return authredis.NewUserRepository(client), authredis.NewSessionRepository(client), cleanup, nil

	case config.BackendMemory:
		logger.Warn("using in-memory storage; data will not survive a restart")
		return memory.NewUserRepo(), memory.NewSessionRepo(), func() {}, nil

	default:
		return nil, nil, nil, oops.Code("CONFIG_INVALID").
			Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// pingRedis verifies Redis connectivity with the same startup backoff the
// postgres path uses.
func pingRedis(ctx context.Context, client *goredis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	backoff := retry.NewFibonacci(500 * time.Millisecond)
	backoff = retry.WithMaxDuration(30*time.Second, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping redis").
			Wrap(err)
	}
	return nil
}
