package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

type incidentStore struct {
	mu        sync.RWMutex
	incidents map[types.IncidentID]*model.Incident
}

func newIncidentStore() *incidentStore {
	return &incidentStore{
		incidents: make(map[types.IncidentID]*model.Incident),
	}
}

func (r *incidentStore) Create(ctx context.Context, incident *model.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if incident.ID == "" {
		return goerr.New("incident ID is required")
	}
	if _, exists := r.incidents[incident.ID]; exists {
		return goerr.New("incident already exists", goerr.V("id", incident.ID))
	}

	stored := incident.Clone()
	if stored.CreatedAt.IsZero() {
		now := time.Now().UTC()
		stored.CreatedAt = now
		stored.UpdatedAt = now
	}

	r.incidents[stored.ID] = stored
	return nil
}

func (r *incidentStore) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incident, exists := r.incidents[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
	}

	return incident.Clone(), nil
}

func (r *incidentStore) List(ctx context.Context) ([]*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incidents := make([]*model.Incident, 0, len(r.incidents))
	for _, incident := range r.incidents {
		incidents = append(incidents, incident.Clone())
	}

	// Newest first for stable console ordering
	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})

	return incidents, nil
}

func (r *incidentStore) Patch(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) (*model.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.incidents[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
	}

	updated := existing.Clone()
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.Severity != nil {
		updated.Severity = *patch.Severity
	}
	if patch.AssigneeID != nil {
		updated.AssigneeID = *patch.AssigneeID
	}
	if patch.AssigneeName != nil {
		updated.AssigneeName = *patch.AssigneeName
	}
	if patch.AcknowledgedAt != nil {
		t := *patch.AcknowledgedAt
		updated.AcknowledgedAt = &t
	}
	if patch.ResolvedAt != nil {
		t := *patch.ResolvedAt
		updated.ResolvedAt = &t
	}
	updated.UpdatedAt = time.Now().UTC()

	r.incidents[id] = updated
	return updated.Clone(), nil
}
