package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
	channel  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("ARGUS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to post notifications to",
			Category:    "Slack",
			Sources:     cli.EnvVars("ARGUS_SLACK_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// IsConfigured checks if Slack notification configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channel != ""
}

// Configure returns a Slack notifier when both token and channel are set.
// With neither set, notifications are simply disabled; setting only one of
// the two is treated as a mistake.
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if x.botToken == "" && x.channel == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.New("Slack notification requires both --slack-bot-token and --slack-channel")
	}
	return notify.NewSlackNotifier(x.botToken, x.channel), nil
}
