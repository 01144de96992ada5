// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/inkpress/inkpress/internal/auth"
	authpg "github.com/inkpress/inkpress/internal/auth/postgres"
	"github.com/inkpress/inkpress/internal/blog"
	blogpg "github.com/inkpress/inkpress/internal/blog/postgres"
	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/logging"
	"github.com/inkpress/inkpress/internal/mail"
	"github.com/inkpress/inkpress/internal/observability"
	"github.com/inkpress/inkpress/internal/store"
	"github.com/inkpress/inkpress/internal/web"
)

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Inkpress API server",
		Long: `Start the API server together with its metrics and health
endpoints. The server runs until interrupted and then shuts down
gracefully.`,
		RunE: runServe,
	}

	cmd.Flags().String("server.addr", ":8080", "API listen address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("observability.addr", ":9090", "metrics and health listen address")
	cmd.Flags().String("log.level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", "text", "log format (text, json)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("inkpress", version, cfg.Log.Level, cfg.Log.Format)
	logger := slog.Default()

	ctx := cmd.Context()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := authpg.NewAccountRepository(pool)
	posts := blogpg.NewPostRepository(pool)
	comments := blogpg.NewCommentRepository(pool)

	hasher := auth.NewArgon2idHasher()
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	authSvc, err := auth.NewService(accounts, hasher, tokens)
	if err != nil {
		return err
	}

	var mailer auth.Mailer
	if cfg.Mail.SMTPAddr != "" {
		mailer, err = mail.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.From)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no smtp relay configured, reset tokens will be logged")
		mailer = mail.NewLogMailer(logger)
	}

	resetSvc, err := auth.NewPasswordResetService(accounts, hasher, mailer)
	if err != nil {
		return err
	}
	resetSvc = resetSvc.WithTTL(cfg.Auth.ResetTTL)

	authorizer, err := blog.NewAuthorizer(posts, comments)
	if err != nil {
		return err
	}
	blogSvc, err := blog.NewService(posts, comments, authorizer)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	obsServer := observability.NewServer(cfg.Observability.Addr, ready.Load)
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.With("operation", "start observability server").Wrap(err)
	}

	apiServer, err := web.NewServer(web.Options{
		Addr:      cfg.Server.Addr,
		StaticDir: cfg.Server.StaticDir,
		Logger:    logger,
		Tokens:    tokens,
		Auth:      authSvc,
		Resets:    resetSvc,
		Blog:      blogSvc,
		Metrics:   obsServer.Metrics(),
	})
	if err != nil {
		return err
	}

	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(stopCtx)
		return oops.With("operation", "start api server").Wrap(err)
	}

	ready.Store(true)
	logger.Info("inkpress is serving",
		"api_addr", apiServer.Addr(),
		"observability_addr", obsServer.Addr(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-apiErrCh:
		if err != nil {
			runErr = oops.With("operation", "api server runtime").Wrap(err)
		}
	case err := <-obsErrCh:
		if err != nil {
			runErr = oops.With("operation", "observability server runtime").Wrap(err)
		}
	case <-ctx.Done():
	}

	ready.Store(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	if err := obsServer.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}
