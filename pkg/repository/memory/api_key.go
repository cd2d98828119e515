package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

type apiKeyStore struct {
	mu       sync.RWMutex
	records  map[types.APIKeyID]*model.APIKeyRecord
	secrets  map[types.APIKeyID]string
	verifier interfaces.CredentialVerifier
}

func newAPIKeyStore() *apiKeyStore {
	return &apiKeyStore{
		records: make(map[types.APIKeyID]*model.APIKeyRecord),
		secrets: make(map[types.APIKeyID]string),
	}
}

func (r *apiKeyStore) List(ctx context.Context) ([]*model.APIKeyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.APIKeyRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec.Clone())
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

func (r *apiKeyStore) Create(ctx context.Context, provider types.Provider, keyName, secret string) (*model.APIKeyRecord, error) {
	if !provider.IsValid() {
		return nil, goerr.New("invalid provider", goerr.V("provider", provider))
	}
	if keyName == "" {
		return nil, goerr.New("key name is required")
	}
	if secret == "" {
		return nil, goerr.New("secret is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &model.APIKeyRecord{
		ID:        types.NewAPIKeyID(),
		Provider:  provider,
		KeyName:   keyName,
		CreatedAt: time.Now().UTC(),
	}

	r.records[rec.ID] = rec
	r.secrets[rec.ID] = secret

	return rec.Clone(), nil
}

func (r *apiKeyStore) Validate(ctx context.Context, id types.APIKeyID) (*model.APIKeyRecord, error) {
	r.mu.Lock()
	rec, exists := r.records[id]
	secret := r.secrets[id]
	verifier := r.verifier
	r.mu.Unlock()

	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "API key not found", goerr.V("id", id))
	}

	// The probe runs outside the lock: a slow provider must not block other
	// store operations.
	var verifyErr error
	if verifier == nil {
		verifyErr = goerr.New("no credential verifier configured")
	} else {
		verifyErr = verifier.Verify(ctx, rec.Provider, secret)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists = r.records[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "API key not found", goerr.V("id", id))
	}

	if verifyErr != nil {
		rec.MarkValidated(false, verifyErr.Error(), time.Now().UTC())
	} else {
		rec.MarkValidated(true, "", time.Now().UTC())
	}

	return rec.Clone(), nil
}

func (r *apiKeyStore) Delete(ctx context.Context, id types.APIKeyID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return goerr.Wrap(ErrNotFound, "API key not found", goerr.V("id", id))
	}

	delete(r.records, id)
	delete(r.secrets, id)
	return nil
}
