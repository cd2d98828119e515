package remote

import (
	"context"
	"net/http"

	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

type incidentClient struct {
	client *Client
}

func (r *incidentClient) Create(ctx context.Context, incident *model.Incident) error {
	return r.client.do(ctx, http.MethodPost, "/api/incidents", incident, nil)
}

func (r *incidentClient) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	var incident model.Incident
	if err := r.client.do(ctx, http.MethodGet, "/api/incidents/"+string(id), nil, &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *incidentClient) List(ctx context.Context) ([]*model.Incident, error) {
	var incidents []*model.Incident
	if err := r.client.do(ctx, http.MethodGet, "/api/incidents", nil, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *incidentClient) Patch(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) (*model.Incident, error) {
	var incident model.Incident
	if err := r.client.do(ctx, http.MethodPatch, "/api/incidents/"+string(id), patch, &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}
