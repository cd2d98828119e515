package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// revalidateConcurrency caps how many provider probes run at once during a
// bulk revalidation.
const revalidateConcurrency = 4

// CredentialUseCase manages provider API key records. The raw secret passes
// through Create exactly once and is never read back.
type CredentialUseCase struct {
	backend  interfaces.Backend
	notifier interfaces.Notifier
	clock    func() time.Time
}

func newCredentialUseCase(backend interfaces.Backend, notifier interfaces.Notifier, clock func() time.Time) *CredentialUseCase {
	return &CredentialUseCase{
		backend:  backend,
		notifier: notifier,
		clock:    clock,
	}
}

func (uc *CredentialUseCase) notify(ctx context.Context, n model.Notification) {
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, n)
	}
}

func (uc *CredentialUseCase) List(ctx context.Context) ([]*model.APIKeyRecord, error) {
	records, err := uc.backend.APIKey().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list API keys")
	}
	return records, nil
}

func (uc *CredentialUseCase) Create(ctx context.Context, provider types.Provider, keyName, secret string) (*model.APIKeyRecord, error) {
	if !provider.IsValid() {
		return nil, goerr.New("invalid provider", goerr.V("provider", provider))
	}
	if keyName == "" {
		return nil, goerr.New("key name is required")
	}
	if secret == "" {
		return nil, goerr.New("secret is required")
	}

	rec, err := uc.backend.APIKey().Create(ctx, provider, keyName, secret)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create API key", goerr.V("provider", provider))
	}

	// A new key is probed right away so the caller sees its validity in the
	// creation response. A failed probe is reported on the record, not as an
	// error.
	if validated, err := uc.backend.APIKey().Validate(ctx, rec.ID); err == nil {
		rec = validated
	}

	if rec.IsValid {
		uc.notify(ctx, model.Notification{
			Level:   types.NotifyLevelSuccess,
			Title:   "API key added",
			Message: fmt.Sprintf("%s (%s)", rec.KeyName, rec.Provider),
		})
	} else {
		uc.notify(ctx, model.Notification{
			Level:   types.NotifyLevelError,
			Title:   "API key added but invalid",
			Message: fmt.Sprintf("%s: %s", rec.KeyName, rec.ValidationError),
		})
	}

	return rec, nil
}

// Validate probes the stored secret against its provider and records the
// outcome on the record. A failed probe is a normal outcome, not an error.
func (uc *CredentialUseCase) Validate(ctx context.Context, id types.APIKeyID) (*model.APIKeyRecord, error) {
	rec, err := uc.backend.APIKey().Validate(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrAPIKeyNotFound, "failed to validate API key", goerr.V(APIKeyIDKey, id))
	}

	if rec.IsValid {
		uc.notify(ctx, model.Notification{
			Level:   types.NotifyLevelSuccess,
			Title:   "API key valid",
			Message: fmt.Sprintf("%s (%s)", rec.KeyName, rec.Provider),
		})
	} else {
		uc.notify(ctx, model.Notification{
			Level:   types.NotifyLevelError,
			Title:   "API key validation failed",
			Message: fmt.Sprintf("%s: %s", rec.KeyName, rec.ValidationError),
		})
	}

	return rec, nil
}

func (uc *CredentialUseCase) Delete(ctx context.Context, id types.APIKeyID) error {
	if err := uc.backend.APIKey().Delete(ctx, id); err != nil {
		return goerr.Wrap(ErrAPIKeyNotFound, "failed to delete API key", goerr.V(APIKeyIDKey, id))
	}

	uc.notify(ctx, model.Notification{
		Level:   types.NotifyLevelInfo,
		Title:   "API key deleted",
		Message: string(id),
	})

	return nil
}

// RevalidateAll re-probes every stored key with bounded concurrency and
// returns the refreshed records.
func (uc *CredentialUseCase) RevalidateAll(ctx context.Context) ([]*model.APIKeyRecord, error) {
	records, err := uc.backend.APIKey().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list API keys")
	}

	results := make([]*model.APIKeyRecord, len(records))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(revalidateConcurrency)

	for i, rec := range records {
		eg.Go(func() error {
			validated, err := uc.backend.APIKey().Validate(egCtx, rec.ID)
			if err != nil {
				return goerr.Wrap(err, "failed to revalidate API key", goerr.V(APIKeyIDKey, rec.ID))
			}
			results[i] = validated
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
