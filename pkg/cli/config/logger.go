package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Logger struct {
	level     string
	format    string
	sentryDSN string
	sentryEnv string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("ARGUS_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("ARGUS_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error tracking",
			Category:    "Logging",
			Sources:     cli.EnvVars("ARGUS_SENTRY_DSN"),
			Destination: &x.sentryDSN,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Logging",
			Sources:     cli.EnvVars("ARGUS_SENTRY_ENV"),
			Destination: &x.sentryEnv,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.Bool("sentry", x.sentryDSN != ""),
	)
}

// Configure installs the default logger and initializes Sentry when a DSN is
// given. The returned closer flushes pending Sentry events.
func (x *Logger) Configure() (func(), error) {
	level, err := logging.ParseLevel(x.level)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid log level")
	}
	format, err := logging.ParseFormat(x.format)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid log format")
	}

	logging.SetDefault(logging.New(os.Stdout, level, format))

	closer := func() {}
	if x.sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         x.sentryDSN,
			Environment: x.sentryEnv,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sentry")
		}
		closer = func() {
			sentry.Flush(2 * time.Second)
		}
	}

	return closer, nil
}
