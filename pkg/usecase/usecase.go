package usecase

import (
	"context"
	"time"

	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/model/config"
)

const defaultPatchTimeout = 10 * time.Second

type UseCases struct {
	backend  interfaces.Backend
	notifier interfaces.Notifier
	slaCfg   *config.SLAConfig

	patchTimeout      time.Duration
	rollbackOnFailure bool
	clock             func() time.Time

	Credential *CredentialUseCase
}

type Option func(*UseCases)

// WithNotifier sets the sink receiving notification events
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithSLAConfig replaces the built-in SLA policy
func WithSLAConfig(cfg *config.SLAConfig) Option {
	return func(uc *UseCases) {
		uc.slaCfg = cfg
	}
}

// WithPatchTimeout bounds how long a background persist attempt may run.
// The busy gate of a view opens once the attempt finishes or times out.
func WithPatchTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.patchTimeout = d
	}
}

// WithRollbackOnFailure restores the previous value on the view when the
// backend rejects an update. By default the optimistic value is kept and only
// an error notification is emitted.
func WithRollbackOnFailure() Option {
	return func(uc *UseCases) {
		uc.rollbackOnFailure = true
	}
}

// WithClock replaces the time source, for tests
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(backend interfaces.Backend, opts ...Option) *UseCases {
	uc := &UseCases{
		backend:      backend,
		slaCfg:       config.DefaultSLAConfig(),
		patchTimeout: defaultPatchTimeout,
		clock:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Credential = newCredentialUseCase(backend, uc.notifier, uc.clock)

	return uc
}

// SLAConfig returns the active SLA policy
func (uc *UseCases) SLAConfig() *config.SLAConfig {
	return uc.slaCfg
}

func (uc *UseCases) notify(ctx context.Context, n model.Notification) {
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, n)
	}
}
