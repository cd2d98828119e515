package interfaces

import (
	"context"

	"github.com/oncall-lab/argus/pkg/domain/model"
)

// Notifier receives abstract notification events. Implementations decide
// presentation and delivery; Notify must not block on user interaction.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, n model.Notification)

func (f NotifierFunc) Notify(ctx context.Context, n model.Notification) {
	f(ctx, n)
}
