package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type apiKeyStore struct {
	client           *firestore.Client
	collectionPrefix string
	verifier         interfaces.CredentialVerifier
}

func newAPIKeyStore(client *firestore.Client) *apiKeyStore {
	return &apiKeyStore{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *apiKeyStore) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_api_keys"
	}
	return "api_keys"
}

// Secrets live in their own collection so that record reads never carry
// secret material.
func (r *apiKeyStore) secretCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_api_key_secrets"
	}
	return "api_key_secrets"
}

type storedSecret struct {
	Secret string
}

func (r *apiKeyStore) List(ctx context.Context) ([]*model.APIKeyRecord, error) {
	iter := r.client.Collection(r.collection()).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var records []*model.APIKeyRecord
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate API keys")
		}

		var rec model.APIKeyRecord
		if err := docSnap.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to decode API key", goerr.V("doc_id", docSnap.Ref.ID))
		}

		records = append(records, &rec)
	}

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

	rec := &model.APIKeyRecord{
		ID:        types.NewAPIKeyID(),
		Provider:  provider,
		KeyName:   keyName,
		CreatedAt: time.Now().UTC(),
	}

	recRef := r.client.Collection(r.collection()).Doc(string(rec.ID))
	secretRef := r.client.Collection(r.secretCollection()).Doc(string(rec.ID))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(recRef, rec); err != nil {
			return goerr.Wrap(err, "failed to create API key record")
		}
		if err := tx.Create(secretRef, &storedSecret{Secret: secret}); err != nil {
			return goerr.Wrap(err, "failed to store API key secret")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create API key", goerr.V("id", rec.ID))
	}

	return rec, nil
}

func (r *apiKeyStore) Validate(ctx context.Context, id types.APIKeyID) (*model.APIKeyRecord, error) {
	recRef := r.client.Collection(r.collection()).Doc(string(id))

	docSnap, err := recRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "API key not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get API key", goerr.V("id", id))
	}

	var rec model.APIKeyRecord
	if err := docSnap.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode API key", goerr.V("id", id))
	}

	secretSnap, err := r.client.Collection(r.secretCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get API key secret", goerr.V("id", id))
	}
	var sec storedSecret
	if err := secretSnap.DataTo(&sec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode API key secret", goerr.V("id", id))
	}

	var verifyErr error
	if r.verifier == nil {
		verifyErr = goerr.New("no credential verifier configured")
	} else {
		verifyErr = r.verifier.Verify(ctx, rec.Provider, sec.Secret)
	}

	if verifyErr != nil {
		rec.MarkValidated(false, verifyErr.Error(), time.Now().UTC())
	} else {
		rec.MarkValidated(true, "", time.Now().UTC())
	}

	if _, err := recRef.Set(ctx, &rec); err != nil {
		return nil, goerr.Wrap(err, "failed to store validation result", goerr.V("id", id))
	}

	return &rec, nil
}

func (r *apiKeyStore) Delete(ctx context.Context, id types.APIKeyID) error {
	recRef := r.client.Collection(r.collection()).Doc(string(id))
	secretRef := r.client.Collection(r.secretCollection()).Doc(string(id))

	if _, err := recRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "API key not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check API key existence", goerr.V("id", id))
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(recRef); err != nil {
			return goerr.Wrap(err, "failed to delete API key record")
		}
		if err := tx.Delete(secretRef); err != nil {
			return goerr.Wrap(err, "failed to delete API key secret")
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete API key", goerr.V("id", id))
	}

	return nil
}
