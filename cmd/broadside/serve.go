// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/broadside-game/broadside/internal/account"
	"github.com/broadside-game/broadside/internal/account/memory"
	accountpg "github.com/broadside-game/broadside/internal/account/postgres"
	"github.com/broadside-game/broadside/internal/httpapi"
	"github.com/broadside-game/broadside/internal/logging"
	"github.com/broadside-game/broadside/internal/observability"
	"github.com/broadside-game/broadside/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account API server",
		Long: `Start the account REST API server with cookie sessions, plus an
observability server exposing Prometheus metrics and health probes.`,
		RunE: runServe,
	}

	cmd.Flags().String("server.addr", "", "API listen address")
	cmd.Flags().String("server.metrics_addr", "", "metrics/health HTTP address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().Int32("account.default_rank", 0, "rank assigned to new accounts")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL, err := cfg.requireDatabaseURL()
	if err != nil {
		return err
	}

	logging.SetDefault("broadside", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database")
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	pool, err := store.Connect(connectCtx, databaseURL)
	connectCancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	users := accountpg.NewUserRepository(pool)
	service, err := account.NewUserServiceWithLogger(users, account.NewArgon2idHasher(), cfg.Account.DefaultRank, logger)
	if err != nil {
		return err
	}
	sessionStore := memory.NewSessionStore()
	sessions, err := account.NewSessionManager(users, sessionStore)
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(
		cfg.Server.MetricsAddr,
		func() bool { return pool.Ping(context.Background()) == nil },
		sessionStore.Len,
	)
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.With("operation", "start observability server").Wrap(err)
	}

	apiServer, err := httpapi.NewServer(cfg.Server.Addr, service, sessions, obsServer.Metrics(), logger)
	if err != nil {
		stopServer(logger, "observability", obsServer)
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServer(logger, "observability", obsServer)
		return oops.With("operation", "start api server").Wrap(err)
	}

	logger.Info("broadside account server running",
		"api_addr", apiServer.Addr(),
		"metrics_addr", obsServer.Addr(),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-apiErrCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case err = <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	}

	stopServer(logger, "api", apiServer)
	stopServer(logger, "observability", obsServer)

	return err
}

// stoppable is implemented by the HTTP servers the command owns.
type stoppable interface {
	Stop(ctx context.Context) error
}

// stopServer shuts a server down within the graceful-shutdown budget,
// logging instead of failing when it cannot stop cleanly.
func stopServer(logger *slog.Logger, name string, srv stoppable) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error(name+" server shutdown failed", "error", err)
	}
}
