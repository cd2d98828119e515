package remote

import (
	"context"
	"net/http"

	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

type apiKeyClient struct {
	client *Client
}

type createKeyRequest struct {
	Provider types.Provider `json:"provider"`
	KeyName  string         `json:"key_name"`
	Secret   string         `json:"secret"`
}

func (r *apiKeyClient) List(ctx context.Context) ([]*model.APIKeyRecord, error) {
	var records []*model.APIKeyRecord
	if err := r.client.do(ctx, http.MethodGet, "/api/keys", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *apiKeyClient) Create(ctx context.Context, provider types.Provider, keyName, secret string) (*model.APIKeyRecord, error) {
	req := createKeyRequest{
		Provider: provider,
		KeyName:  keyName,
		Secret:   secret,
	}

	var rec model.APIKeyRecord
	if err := r.client.do(ctx, http.MethodPost, "/api/keys", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *apiKeyClient) Validate(ctx context.Context, id types.APIKeyID) (*model.APIKeyRecord, error) {
	var rec model.APIKeyRecord
	if err := r.client.do(ctx, http.MethodPost, "/api/keys/"+string(id)+"/validate", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *apiKeyClient) Delete(ctx context.Context, id types.APIKeyID) error {
	return r.client.do(ctx, http.MethodDelete, "/api/keys/"+string(id), nil, nil)
}
