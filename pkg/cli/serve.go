package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/oncall-lab/argus/pkg/cli/config"
	httpctrl "github.com/oncall-lab/argus/pkg/controller/http"
	"github.com/oncall-lab/argus/pkg/service/worker"
	"github.com/oncall-lab/argus/pkg/usecase"
	"github.com/oncall-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var authSecret string
	var patchTimeout time.Duration
	var refreshInterval time.Duration
	var rollbackOnFailure bool
	var backendCfg config.Backend
	var slackCfg config.Slack
	var slaCfg config.SLA
	var llmCfg config.LLM

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ARGUS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "auth-secret",
			Usage:       "HS256 signing secret for bearer tokens (no-auth mode when empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ARGUS_AUTH_SECRET"),
			Destination: &authSecret,
		},
		&cli.DurationFlag{
			Name:        "patch-timeout",
			Usage:       "Timeout for persisting a single incident update",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("ARGUS_PATCH_TIMEOUT"),
			Destination: &patchTimeout,
		},
		&cli.DurationFlag{
			Name:        "key-refresh-interval",
			Usage:       "Interval for background API key revalidation",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("ARGUS_KEY_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
		&cli.BoolFlag{
			Name:        "rollback-on-failure",
			Usage:       "Restore the previous incident value when a persist attempt fails",
			Sources:     cli.EnvVars("ARGUS_ROLLBACK_ON_FAILURE"),
			Destination: &rollbackOnFailure,
		},
	}

	// Add shared config flags
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, slaCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"addr", addr,
				"backend", backendCfg,
				"slack", slackCfg,
				"sla", slaCfg,
				"llm", llmCfg,
			)

			verifier := llmCfg.Configure()

			backend, err := backendCfg.Configure(ctx, verifier)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize backend")
			}
			defer func() {
				if err := backend.Close(); err != nil {
					logging.Default().Error("failed to close backend", "error", err.Error())
				}
			}()

			slaPolicy, err := slaCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load SLA policy")
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack notifier")
			}

			ucOpts := []usecase.Option{
				usecase.WithSLAConfig(slaPolicy),
				usecase.WithPatchTimeout(patchTimeout),
			}
			if rollbackOnFailure {
				ucOpts = append(ucOpts, usecase.WithRollbackOnFailure())
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logging.Default().Info("Slack notifications enabled")
			} else {
				logging.Default().Info("Slack not configured, notifications disabled")
			}

			uc := usecase.New(backend, ucOpts...)

			// Revalidate stored API keys in the background so revoked keys
			// surface without a manual validate
			refreshWorker := worker.NewCredentialRefreshWorker(uc.Credential, refreshInterval)
			if err := refreshWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start credential refresh worker")
			}

			var httpOpts []httpctrl.Options
			if authSecret != "" {
				httpOpts = append(httpOpts, httpctrl.WithAuthSecret(authSecret))
			} else {
				logging.Default().Warn("No auth secret configured, running without authentication (development only)")
			}

			srv, err := httpctrl.New(uc, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				refreshWorker.Stop()
				return err

			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				refreshWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
