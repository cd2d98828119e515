package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

func newIncident() *model.Incident {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &model.Incident{
		ID:        types.NewIncidentID(),
		Title:     "API latency spike",
		Tags:      []string{"api", "latency"},
		Status:    types.IncidentStatusOpen,
		Severity:  types.SeverityHigh,
		CreatedBy: "U123",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIncident_Clone(t *testing.T) {
	orig := newIncident()
	ack := time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC)
	orig.AcknowledgedAt = &ack

	c := orig.Clone()
	c.Tags[0] = "changed"
	*c.AcknowledgedAt = c.AcknowledgedAt.Add(time.Hour)

	gt.V(t, orig.Tags[0]).Equal("api")
	gt.V(t, *orig.AcknowledgedAt).Equal(ack)
}

func TestIncident_WithStatus(t *testing.T) {
	inc := newIncident()

	t.Run("acknowledge stamps AcknowledgedAt once", func(t *testing.T) {
		at := inc.CreatedAt.Add(5 * time.Minute)
		acked := inc.WithStatus(types.IncidentStatusAcknowledged, at)
		gt.V(t, acked.Status).Equal(types.IncidentStatusAcknowledged)
		gt.Value(t, acked.AcknowledgedAt).NotNil().Required()
		gt.V(t, *acked.AcknowledgedAt).Equal(at)

		// A later pass through acknowledged keeps the first timestamp
		later := acked.WithStatus(types.IncidentStatusOpen, at.Add(time.Minute)).
			WithStatus(types.IncidentStatusAcknowledged, at.Add(2*time.Minute))
		gt.V(t, *later.AcknowledgedAt).Equal(at)
	})

	t.Run("reopen preserves ResolvedAt", func(t *testing.T) {
		resolvedAt := inc.CreatedAt.Add(time.Hour)
		resolved := inc.WithStatus(types.IncidentStatusResolved, resolvedAt)
		gt.Value(t, resolved.ResolvedAt).NotNil().Required()
		gt.V(t, *resolved.ResolvedAt).Equal(resolvedAt)

		reopened := resolved.WithStatus(types.IncidentStatusOpen, resolvedAt.Add(time.Minute))
		gt.V(t, reopened.Status).Equal(types.IncidentStatusOpen)
		gt.Value(t, reopened.ResolvedAt).NotNil().Required()
		gt.V(t, *reopened.ResolvedAt).Equal(resolvedAt)
	})

	t.Run("source value is untouched", func(t *testing.T) {
		_ = inc.WithStatus(types.IncidentStatusResolved, inc.CreatedAt.Add(time.Hour))
		gt.V(t, inc.Status).Equal(types.IncidentStatusOpen)
		gt.V(t, inc.ResolvedAt).Nil()
	})
}

func TestIncident_WithAssignee(t *testing.T) {
	inc := newIncident()
	at := inc.CreatedAt.Add(time.Minute)

	next := inc.WithAssignee("U456", "alice", at)
	gt.V(t, next.AssigneeID).Equal("U456")
	gt.V(t, next.AssigneeName).Equal("alice")
	gt.V(t, next.UpdatedAt).Equal(at)
	gt.V(t, inc.AssigneeID).Equal("")
}

func TestIncidentPatch_IsEmpty(t *testing.T) {
	gt.B(t, model.IncidentPatch{}.IsEmpty()).True()

	sv := types.SeverityLow
	gt.B(t, model.IncidentPatch{Severity: &sv}.IsEmpty()).False()
}
