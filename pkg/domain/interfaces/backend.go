package interfaces

import (
	"context"

	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

// Backend defines the interface for incident and credential persistence
type Backend interface {
	Incident() IncidentBackend
	APIKey() APIKeyBackend

	Close() error
}

// IncidentBackend persists incidents. Patch applies only the non-nil fields
// of the patch and returns the stored incident after the write.
type IncidentBackend interface {
	Create(ctx context.Context, incident *model.Incident) error
	Get(ctx context.Context, id types.IncidentID) (*model.Incident, error)
	List(ctx context.Context) ([]*model.Incident, error)
	Patch(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) (*model.Incident, error)
}

// APIKeyBackend persists credential records. Create receives the raw secret
// exactly once; it is never returned by any method.
type APIKeyBackend interface {
	List(ctx context.Context) ([]*model.APIKeyRecord, error)
	Create(ctx context.Context, provider types.Provider, keyName, secret string) (*model.APIKeyRecord, error)
	Validate(ctx context.Context, id types.APIKeyID) (*model.APIKeyRecord, error)
	Delete(ctx context.Context, id types.APIKeyID) error
}
