package notify

import (
	"context"

	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// SlackNotifier posts notification events to a Slack channel. Delivery
// failures are logged, never surfaced: a broken notifier must not break the
// console.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

var _ interfaces.Notifier = &SlackNotifier{}

func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(botToken),
		channel: channel,
	}
}

func colorFor(level types.NotifyLevel) string {
	switch level {
	case types.NotifyLevelSuccess:
		return "#2eb886"
	case types.NotifyLevelWarning:
		return "#daa038"
	case types.NotifyLevelError:
		return "#a30200"
	default:
		return "#439fe0"
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, event model.Notification) {
	attachment := slack.Attachment{
		Color: colorFor(event.Level),
		Title: event.Title,
		Text:  event.Message,
	}

	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		logging.From(ctx).Error("failed to post notification to Slack",
			"error", err,
			"channel", n.channel,
			"title", event.Title,
		)
	}
}
