package model

import (
	"time"

	"github.com/oncall-lab/argus/pkg/domain/types"
)

// Incident represents a tracked operational issue with a lifecycle status
// and severity. A single Incident value is owned by whichever view displays
// it; updates replace the value wholesale.
type Incident struct {
	ID          types.IncidentID `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags,omitempty"`

	Status   types.IncidentStatus `json:"status"`
	Severity types.Severity       `json:"severity"`

	AssigneeID   string `json:"assignee_id,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`

	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// Clone returns a deep copy of the incident
func (x *Incident) Clone() *Incident {
	if x == nil {
		return nil
	}
	c := *x
	if x.Tags != nil {
		c.Tags = make([]string, len(x.Tags))
		copy(c.Tags, x.Tags)
	}
	if x.AcknowledgedAt != nil {
		t := *x.AcknowledgedAt
		c.AcknowledgedAt = &t
	}
	if x.ResolvedAt != nil {
		t := *x.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

// AvailableActions returns the lifecycle actions offered for the incident's
// current status.
func (x *Incident) AvailableActions() []types.ActionSpec {
	return types.ActionsFor(x.Status)
}

// WithStatus returns a full copy of the incident transitioned to the given
// status at the given time. AcknowledgedAt is set the first time the incident
// passes through acknowledged; ResolvedAt is set on reaching resolved and is
// never cleared afterwards (reopening keeps it as a historical fact).
func (x *Incident) WithStatus(status types.IncidentStatus, now time.Time) *Incident {
	next := x.Clone()
	next.Status = status
	next.UpdatedAt = now

	switch status {
	case types.IncidentStatusAcknowledged:
		if next.AcknowledgedAt == nil {
			t := now
			next.AcknowledgedAt = &t
		}
	case types.IncidentStatusResolved:
		if next.ResolvedAt == nil {
			t := now
			next.ResolvedAt = &t
		}
	}

	return next
}

// WithSeverity returns a full copy of the incident with the severity changed
func (x *Incident) WithSeverity(sv types.Severity, now time.Time) *Incident {
	next := x.Clone()
	next.Severity = sv
	next.UpdatedAt = now
	return next
}

// WithAssignee returns a full copy of the incident with both assignee fields
// set atomically.
func (x *Incident) WithAssignee(assigneeID, assigneeName string, now time.Time) *Incident {
	next := x.Clone()
	next.AssigneeID = assigneeID
	next.AssigneeName = assigneeName
	next.UpdatedAt = now
	return next
}

// IncidentPatch carries only the fields changed by a mutating operation.
// Nil fields are left untouched by the backend.
type IncidentPatch struct {
	Status         *types.IncidentStatus `json:"status,omitempty"`
	Severity       *types.Severity       `json:"severity,omitempty"`
	AssigneeID     *string               `json:"assignee_id,omitempty"`
	AssigneeName   *string               `json:"assignee_name,omitempty"`
	AcknowledgedAt *time.Time            `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time            `json:"resolved_at,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p IncidentPatch) IsEmpty() bool {
	return p.Status == nil && p.Severity == nil &&
		p.AssigneeID == nil && p.AssigneeName == nil &&
		p.AcknowledgedAt == nil && p.ResolvedAt == nil
}
