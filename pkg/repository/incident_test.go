package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/repository/firestore"
	"github.com/oncall-lab/argus/pkg/repository/memory"
)

func newTestIncident(title string) *model.Incident {
	return &model.Incident{
		ID:        types.NewIncidentID(),
		Title:     title,
		Status:    types.IncidentStatusOpen,
		Severity:  types.SeverityMedium,
		CreatedBy: "U123",
	}
}

func runIncidentBackendTest(t *testing.T, newBackend func(t *testing.T) interfaces.Backend) {
	t.Helper()

	t.Run("Create and Get round trip", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()

		incident := newTestIncident("Payment API down")
		incident.Tags = []string{"payments"}

		gt.NoError(t, backend.Incident().Create(ctx, incident)).Required()

		retrieved, err := backend.Incident().Get(ctx, incident.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(incident.ID)
		gt.Value(t, retrieved.Title).Equal("Payment API down")
		gt.Value(t, retrieved.Status).Equal(types.IncidentStatusOpen)
		gt.Array(t, retrieved.Tags).Length(1)
		gt.Bool(t, retrieved.CreatedAt.IsZero()).False()
	})

	t.Run("Get returns error for missing incident", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()

		_, err := backend.Incident().Get(ctx, types.NewIncidentID())
		gt.Value(t, err).NotNil()
	})

	t.Run("List returns all incidents", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			gt.NoError(t, backend.Incident().Create(ctx, newTestIncident(fmt.Sprintf("incident %d", i)))).Required()
		}

		incidents, err := backend.Incident().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, incidents).Length(3)
	})

	t.Run("Patch applies only non-nil fields", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()

		incident := newTestIncident("Degraded search")
		gt.NoError(t, backend.Incident().Create(ctx, incident)).Required()

		status := types.IncidentStatusAcknowledged
		ackAt := time.Now().UTC().Truncate(time.Millisecond)
		updated, err := backend.Incident().Patch(ctx, incident.ID, model.IncidentPatch{
			Status:         &status,
			AcknowledgedAt: &ackAt,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Status).Equal(types.IncidentStatusAcknowledged)
		gt.Value(t, updated.Severity).Equal(types.SeverityMedium)
		gt.Value(t, updated.Title).Equal("Degraded search")
		gt.Value(t, updated.AcknowledgedAt).NotNil()
	})

	t.Run("Patch assignee pair", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()

		incident := newTestIncident("Queue backlog")
		gt.NoError(t, backend.Incident().Create(ctx, incident)).Required()

		assigneeID := "U456"
		assigneeName := "alice"
		updated, err := backend.Incident().Patch(ctx, incident.ID, model.IncidentPatch{
			AssigneeID:   &assigneeID,
			AssigneeName: &assigneeName,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.AssigneeID).Equal("U456")
		gt.Value(t, updated.AssigneeName).Equal("alice")
	})

	t.Run("Patch returns error for missing incident", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()

		sv := types.SeverityLow
		_, err := backend.Incident().Patch(ctx, types.NewIncidentID(), model.IncidentPatch{Severity: &sv})
		gt.Value(t, err).NotNil()
	})
}

func TestIncidentBackend_Memory(t *testing.T) {
	runIncidentBackendTest(t, func(t *testing.T) interfaces.Backend {
		return memory.New()
	})
}

func TestIncidentBackend_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runIncidentBackendTest(t, func(t *testing.T) interfaces.Backend {
		backend, err := firestore.New(context.Background(), projectID,
			firestore.WithCollectionPrefix(fmt.Sprintf("test_%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		return backend
	})
}
