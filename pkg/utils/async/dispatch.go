package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// The handler runs on a background context so that it survives the caller's
// request lifetime, but the caller's logger is preserved.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
