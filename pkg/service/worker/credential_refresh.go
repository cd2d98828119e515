package worker

import (
	"context"
	"sync"
	"time"

	"github.com/oncall-lab/argus/pkg/usecase"
	"github.com/oncall-lab/argus/pkg/utils/logging"
)

// CredentialRefreshWorker revalidates all stored API keys in the background
// so stale or revoked keys surface without waiting for a manual validate.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type CredentialRefreshWorker struct {
	cred     *usecase.CredentialUseCase
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func NewCredentialRefreshWorker(cred *usecase.CredentialUseCase, interval time.Duration) *CredentialRefreshWorker {
	return &CredentialRefreshWorker{
		cred:     cred,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. Does not block server startup.
func (w *CredentialRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("Credential refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion. Stopping twice
// is a no-op.
func (w *CredentialRefreshWorker) Stop() {
	logging.Default().Info("Credential refresh worker stopping")
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
	logging.Default().Info("Credential refresh worker stopped")
}

func (w *CredentialRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Credential refresh worker context cancelled")
			return
		}
	}
}

func (w *CredentialRefreshWorker) refresh(ctx context.Context) {
	startTime := time.Now()

	records, err := w.cred.RevalidateAll(ctx)
	if err != nil {
		// Log error but continue worker
		logging.Default().Error("Credential refresh failed (will retry next interval)",
			"error", err.Error())
		return
	}

	var invalid int
	for _, rec := range records {
		if !rec.IsValid {
			invalid++
		}
	}

	logging.Default().Info("Credential refresh completed",
		"count", len(records),
		"invalid", invalid,
		"duration", time.Since(startTime).String())
}
