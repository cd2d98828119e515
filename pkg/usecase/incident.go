package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/model/auth"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

// CreateIncidentInput carries the fields a caller may set at creation
type CreateIncidentInput struct {
	Title       string
	Description string
	Severity    types.Severity
	Tags        []string
}

func (uc *UseCases) CreateIncident(ctx context.Context, input CreateIncidentInput) (*model.Incident, error) {
	if input.Title == "" {
		return nil, goerr.New("incident title is required")
	}

	severity := input.Severity
	if severity == "" {
		severity = types.SeverityMedium
	}
	if !severity.IsValid() {
		return nil, goerr.New("invalid severity", goerr.V("severity", severity))
	}

	createdBy := "unknown"
	if token, ok := auth.TokenFromContext(ctx); ok {
		createdBy = token.Sub
	}

	now := uc.clock()
	incident := &model.Incident{
		ID:          types.NewIncidentID(),
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
		Status:      types.IncidentStatusOpen,
		Severity:    severity,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.backend.Incident().Create(ctx, incident); err != nil {
		return nil, goerr.Wrap(err, "failed to create incident", goerr.V(IncidentIDKey, incident.ID))
	}

	uc.notify(ctx, model.Notification{
		Level:   types.NotifyLevelSuccess,
		Title:   "Incident created",
		Message: fmt.Sprintf("%s (%s)", incident.Title, incident.Severity),
	})

	return incident, nil
}

func (uc *UseCases) ListIncidents(ctx context.Context) ([]*model.Incident, error) {
	incidents, err := uc.backend.Incident().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list incidents")
	}
	return incidents, nil
}

func (uc *UseCases) GetIncident(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	incident, err := uc.backend.Incident().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrIncidentNotFound, "incident not found", goerr.V(IncidentIDKey, id))
	}
	return incident, nil
}

// PatchIncident applies field changes directly to the backend and returns
// the stored incident. Used by the server-side store API; console-side
// mutations go through IncidentView instead.
func (uc *UseCases) PatchIncident(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) (*model.Incident, error) {
	if patch.IsEmpty() {
		return uc.GetIncident(ctx, id)
	}

	incident, err := uc.backend.Incident().Patch(ctx, id, patch)
	if err != nil {
		return nil, goerr.Wrap(ErrIncidentNotFound, "failed to patch incident", goerr.V(IncidentIDKey, id))
	}
	return incident, nil
}
