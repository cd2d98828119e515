package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/utils/async"
	"github.com/oncall-lab/argus/pkg/utils/errutil"
)

// UpdateResult reports the outcome of one background persist attempt
type UpdateResult struct {
	Incident  *model.Incident
	Confirmed bool
	Err       error
}

// IncidentView owns a single incident value and serializes its updates.
//
// Every mutation follows the same protocol: the next value is computed as a
// full copy, shown immediately via the change callback, and persisted in the
// background. While a persist attempt is in flight the view is busy and any
// further mutation fails with ErrUpdateInFlight. On success the stored value
// replaces the optimistic one; on failure the optimistic value is kept (or
// rolled back when WithRollbackOnFailure is set) and an error-level
// notification is emitted.
type IncidentView struct {
	uc *UseCases

	mu       sync.Mutex
	current  *model.Incident
	busy     bool
	closed   bool
	onChange func(*model.Incident)
	onResult func(UpdateResult)

	wg sync.WaitGroup
}

// OpenView loads the incident and returns a view owning it
func (uc *UseCases) OpenView(ctx context.Context, id types.IncidentID) (*IncidentView, error) {
	incident, err := uc.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	return &IncidentView{
		uc:      uc,
		current: incident,
	}, nil
}

// Incident returns a copy of the value the view currently displays
func (v *IncidentView) Incident() *model.Incident {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current.Clone()
}

// AvailableActions returns the lifecycle actions offered for the current
// status.
func (v *IncidentView) AvailableActions() []types.ActionSpec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return types.ActionsFor(v.current.Status)
}

// SetOnChange registers the callback fired whenever the displayed value
// changes. The callback receives a copy.
func (v *IncidentView) SetOnChange(fn func(*model.Incident)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// SetOnResult registers the callback fired when a background persist attempt
// finishes.
func (v *IncidentView) SetOnResult(fn func(UpdateResult)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onResult = fn
}

// Apply performs a lifecycle action. The action must be offered for the
// incident's current status.
func (v *IncidentView) Apply(ctx context.Context, action types.IncidentAction) error {
	return v.mutate(ctx, func(cur *model.Incident) (*model.Incident, model.IncidentPatch, *model.Notification, error) {
		spec, ok := types.SpecFor(cur.Status, action)
		if !ok {
			return nil, model.IncidentPatch{}, nil, goerr.Wrap(ErrActionNotAllowed, "action not allowed",
				goerr.V(IncidentIDKey, cur.ID),
				goerr.V(ActionKey, action),
				goerr.V("status", cur.Status),
			)
		}

		next := cur.WithStatus(spec.Target, v.uc.clock())

		patch := model.IncidentPatch{
			Status:         &next.Status,
			AcknowledgedAt: next.AcknowledgedAt,
			ResolvedAt:     next.ResolvedAt,
		}

		notice := &model.Notification{
			Level:   spec.Level,
			Title:   spec.Label,
			Message: fmt.Sprintf("%s is now %s", next.Title, next.Status),
		}

		return next, patch, notice, nil
	})
}

// SetSeverity changes the severity without touching the lifecycle status
func (v *IncidentView) SetSeverity(ctx context.Context, sv types.Severity) error {
	if !sv.IsValid() {
		return goerr.New("invalid severity", goerr.V("severity", sv))
	}

	return v.mutate(ctx, func(cur *model.Incident) (*model.Incident, model.IncidentPatch, *model.Notification, error) {
		prev := cur.Severity
		next := cur.WithSeverity(sv, v.uc.clock())

		notice := &model.Notification{
			Level:   types.NotifyLevelInfo,
			Title:   "Severity changed",
			Message: fmt.Sprintf("%s: %s to %s", next.Title, prev, sv),
		}

		return next, model.IncidentPatch{Severity: &next.Severity}, notice, nil
	})
}

// Escalate pages additional responders. The paging itself is handled by an
// external subsystem, so this only emits a warning notification; status,
// severity, and assignment are untouched and nothing is persisted.
func (v *IncidentView) Escalate(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return goerr.Wrap(ErrViewClosed, "view is closed")
	}
	cur := v.current
	v.mu.Unlock()

	if cur.Status.IsTerminal() {
		return goerr.Wrap(ErrActionNotAllowed, "cannot escalate a closed incident",
			goerr.V(IncidentIDKey, cur.ID),
			goerr.V("status", cur.Status))
	}

	v.uc.notify(ctx, model.Notification{
		Level:   types.NotifyLevelWarning,
		Title:   "Incident escalated",
		Message: fmt.Sprintf("%s needs additional responders (%s)", cur.Title, cur.Severity),
	})

	return nil
}

// Assign sets both assignee fields as one update
func (v *IncidentView) Assign(ctx context.Context, assigneeID, assigneeName string) error {
	return v.mutate(ctx, func(cur *model.Incident) (*model.Incident, model.IncidentPatch, *model.Notification, error) {
		next := cur.WithAssignee(assigneeID, assigneeName, v.uc.clock())

		notice := &model.Notification{
			Level:   types.NotifyLevelInfo,
			Title:   "Assignee updated",
			Message: fmt.Sprintf("%s assigned to %s", next.Title, assigneeName),
		}

		return next, model.IncidentPatch{
			AssigneeID:   &next.AssigneeID,
			AssigneeName: &next.AssigneeName,
		}, notice, nil
	})
}

// Close disposes the view. Later mutations fail with ErrViewClosed and
// outcomes of in-flight persists no longer reach the callbacks. Closing an
// already closed view is a no-op.
func (v *IncidentView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// Wait blocks until every background persist attempt started by this view
// has finished. Intended for teardown and tests.
func (v *IncidentView) Wait() {
	v.wg.Wait()
}

func (v *IncidentView) mutate(ctx context.Context, build func(cur *model.Incident) (*model.Incident, model.IncidentPatch, *model.Notification, error)) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return goerr.Wrap(ErrViewClosed, "view is closed")
	}
	if v.busy {
		v.mu.Unlock()
		return goerr.Wrap(ErrUpdateInFlight, "update already in flight", goerr.V(IncidentIDKey, v.current.ID))
	}
	if v.current.Status.IsTerminal() {
		v.mu.Unlock()
		return goerr.Wrap(ErrActionNotAllowed, "incident is closed",
			goerr.V(IncidentIDKey, v.current.ID),
			goerr.V("status", v.current.Status))
	}

	next, patch, notice, err := build(v.current)
	if err != nil {
		v.mu.Unlock()
		return err
	}

	prev := v.current
	v.current = next
	v.busy = true
	onChange := v.onChange
	v.mu.Unlock()

	// Optimistic render happens before the persist attempt even starts
	if onChange != nil {
		onChange(next.Clone())
	}
	if notice != nil {
		v.uc.notify(ctx, *notice)
	}

	v.wg.Add(1)
	async.Dispatch(ctx, func(ctx context.Context) error {
		defer v.wg.Done()
		v.reconcile(ctx, prev, next, patch)
		return nil
	})

	return nil
}

func (v *IncidentView) reconcile(ctx context.Context, prev, next *model.Incident, patch model.IncidentPatch) {
	ctx, cancel := context.WithTimeout(ctx, v.uc.patchTimeout)
	defer cancel()

	confirmed, err := v.uc.backend.Incident().Patch(ctx, next.ID, patch)

	v.mu.Lock()
	v.busy = false
	closed := v.closed
	onChange := v.onChange
	onResult := v.onResult
	if !closed {
		if err == nil {
			v.current = confirmed.Clone()
		} else if v.uc.rollbackOnFailure {
			v.current = prev
		}
	}
	v.mu.Unlock()

	if closed {
		return
	}

	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to persist incident update")

		v.uc.notify(ctx, model.Notification{
			Level:   types.NotifyLevelError,
			Title:   "Update failed",
			Message: fmt.Sprintf("%s could not be saved", next.Title),
		})

		if v.uc.rollbackOnFailure && onChange != nil {
			onChange(prev.Clone())
		}
		if onResult != nil {
			onResult(UpdateResult{Incident: next.Clone(), Confirmed: false, Err: err})
		}
		return
	}

	if onChange != nil {
		onChange(confirmed.Clone())
	}
	if onResult != nil {
		onResult(UpdateResult{Incident: confirmed.Clone(), Confirmed: true})
	}
}
