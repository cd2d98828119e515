package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/repository/memory"
	"github.com/oncall-lab/argus/pkg/service/notify"
	"github.com/oncall-lab/argus/pkg/usecase"
)

// hookedBackend lets tests intercept Patch calls on an otherwise working
// in-memory backend.
type hookedBackend struct {
	interfaces.Backend
	patchHook func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error
}

func (b *hookedBackend) Incident() interfaces.IncidentBackend {
	return &hookedIncidentBackend{
		IncidentBackend: b.Backend.Incident(),
		hook:            b.patchHook,
	}
}

type hookedIncidentBackend struct {
	interfaces.IncidentBackend
	hook func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error
}

func (b *hookedIncidentBackend) Patch(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) (*model.Incident, error) {
	if b.hook != nil {
		if err := b.hook(ctx, id, patch); err != nil {
			return nil, err
		}
	}
	return b.IncidentBackend.Patch(ctx, id, patch)
}

func setupView(t *testing.T, backend interfaces.Backend, opts ...usecase.Option) (*usecase.UseCases, *usecase.IncidentView, *notify.Recorder) {
	t.Helper()
	ctx := context.Background()

	recorder := notify.NewRecorder()
	opts = append([]usecase.Option{usecase.WithNotifier(recorder)}, opts...)
	uc := usecase.New(backend, opts...)

	incident, err := uc.CreateIncident(ctx, usecase.CreateIncidentInput{
		Title:    "API latency spike",
		Severity: types.SeverityHigh,
	})
	gt.NoError(t, err).Required()
	recorder.Reset()

	view, err := uc.OpenView(ctx, incident.ID)
	gt.NoError(t, err).Required()

	return uc, view, recorder
}

func TestIncidentView_ApplyAcknowledge(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	_, view, recorder := setupView(t, backend)

	var mu sync.Mutex
	var changes []*model.Incident
	view.SetOnChange(func(inc *model.Incident) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, inc)
	})

	var results []usecase.UpdateResult
	view.SetOnResult(func(r usecase.UpdateResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	})

	gt.NoError(t, view.Apply(ctx, types.ActionAcknowledge)).Required()

	// The optimistic value is visible before the backend confirms
	mu.Lock()
	gt.Number(t, len(changes)).GreaterOrEqual(1).Required()
	gt.Value(t, changes[0].Status).Equal(types.IncidentStatusAcknowledged)
	gt.Value(t, changes[0].AcknowledgedAt).NotNil()
	mu.Unlock()

	view.Wait()

	mu.Lock()
	defer mu.Unlock()
	gt.Array(t, results).Length(1)
	gt.Bool(t, results[0].Confirmed).True()
	gt.NoError(t, results[0].Err)

	// Confirmed value replaced the optimistic one
	gt.Value(t, view.Incident().Status).Equal(types.IncidentStatusAcknowledged)

	// The persisted record matches
	stored, err := backend.Incident().Get(ctx, view.Incident().ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.IncidentStatusAcknowledged)

	// One success-level notification for the action
	gt.Number(t, recorder.CountByLevel(types.NotifyLevelSuccess)).Equal(1)
}

func TestIncidentView_ActionTable(t *testing.T) {
	ctx := context.Background()
	_, view, _ := setupView(t, memory.New())

	// open: acknowledge and resolve are offered, reopen is not
	actions := view.AvailableActions()
	gt.Array(t, actions).Length(2)
	gt.NoError(t, view.Apply(ctx, types.ActionAcknowledge))
	view.Wait()

	// acknowledged: acknowledge again is rejected
	err := view.Apply(ctx, types.ActionAcknowledge)
	gt.Bool(t, errors.Is(err, usecase.ErrActionNotAllowed)).True()
	gt.Array(t, view.AvailableActions()).Length(1)

	gt.NoError(t, view.Apply(ctx, types.ActionResolve))
	view.Wait()

	// resolved: only reopen remains
	actions = view.AvailableActions()
	gt.Array(t, actions).Length(1)
	gt.Value(t, actions[0].Action).Equal(types.ActionReopen)

	gt.NoError(t, view.Apply(ctx, types.ActionReopen))
	view.Wait()

	// Reopening keeps the historical resolution timestamp
	reopened := view.Incident()
	gt.Value(t, reopened.Status).Equal(types.IncidentStatusOpen)
	gt.Value(t, reopened.ResolvedAt).NotNil()
}

func TestIncidentView_BusyGate(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once

	backend := &hookedBackend{
		Backend: memory.New(),
		patchHook: func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error {
			once.Do(func() { close(entered) })
			<-release
			return nil
		},
	}

	_, view, _ := setupView(t, backend)

	gt.NoError(t, view.Apply(ctx, types.ActionAcknowledge)).Required()
	<-entered

	// A second mutation while the first persist is in flight fails fast
	err := view.SetSeverity(ctx, types.SeverityCritical)
	gt.Bool(t, errors.Is(err, usecase.ErrUpdateInFlight)).True()

	close(release)
	view.Wait()

	// The gate opens once the persist attempt finished
	gt.NoError(t, view.SetSeverity(ctx, types.SeverityCritical))
	view.Wait()
	gt.Value(t, view.Incident().Severity).Equal(types.SeverityCritical)
}

func TestIncidentView_FailureKeepsOptimisticValue(t *testing.T) {
	ctx := context.Background()

	backend := &hookedBackend{
		Backend: memory.New(),
		patchHook: func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error {
			return goerr.New("backend unavailable")
		},
	}

	_, view, recorder := setupView(t, backend)

	var mu sync.Mutex
	var results []usecase.UpdateResult
	view.SetOnResult(func(r usecase.UpdateResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	})

	gt.NoError(t, view.Assign(ctx, "U456", "alice")).Required()
	view.Wait()

	// The optimistic assignment stays on the view
	gt.Value(t, view.Incident().AssigneeID).Equal("U456")

	mu.Lock()
	gt.Array(t, results).Length(1)
	gt.Bool(t, results[0].Confirmed).False()
	gt.Value(t, results[0].Err).NotNil()
	mu.Unlock()

	// Exactly one error-level notification for the failed persist
	gt.Number(t, recorder.CountByLevel(types.NotifyLevelError)).Equal(1)
}

func TestIncidentView_RollbackOnFailure(t *testing.T) {
	ctx := context.Background()

	backend := &hookedBackend{
		Backend: memory.New(),
		patchHook: func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error {
			return goerr.New("backend unavailable")
		},
	}

	_, view, _ := setupView(t, backend, usecase.WithRollbackOnFailure())

	gt.NoError(t, view.Assign(ctx, "U456", "alice")).Required()
	view.Wait()

	// The previous value is restored
	gt.Value(t, view.Incident().AssigneeID).Equal("")
}

func TestIncidentView_PatchTimeout(t *testing.T) {
	ctx := context.Background()

	backend := &hookedBackend{
		Backend: memory.New(),
		patchHook: func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	_, view, recorder := setupView(t, backend, usecase.WithPatchTimeout(20*time.Millisecond))

	gt.NoError(t, view.Apply(ctx, types.ActionAcknowledge)).Required()
	view.Wait()

	// The timeout opens the gate and counts as a failed persist
	gt.Number(t, recorder.CountByLevel(types.NotifyLevelError)).Equal(1)
	gt.NoError(t, view.SetSeverity(ctx, types.SeverityLow))
	view.Wait()
}

func TestIncidentView_Close(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	backend := &hookedBackend{
		Backend: memory.New(),
		patchHook: func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error {
			<-release
			return nil
		},
	}

	_, view, _ := setupView(t, backend)

	var mu sync.Mutex
	var calls int
	view.SetOnResult(func(usecase.UpdateResult) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	gt.NoError(t, view.Apply(ctx, types.ActionAcknowledge)).Required()

	view.Close()
	view.Close() // closing twice is fine
	close(release)
	view.Wait()

	// The in-flight outcome never reached the callbacks
	mu.Lock()
	gt.Number(t, calls).Equal(0)
	mu.Unlock()

	err := view.SetSeverity(ctx, types.SeverityLow)
	gt.Bool(t, errors.Is(err, usecase.ErrViewClosed)).True()
}

func TestIncidentView_Escalate(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var patches int
	backend := &hookedBackend{
		Backend: memory.New(),
		patchHook: func(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) error {
			mu.Lock()
			defer mu.Unlock()
			patches++
			return nil
		},
	}

	_, view, recorder := setupView(t, backend)

	// Escalation pages out-of-band: a warning is emitted but the incident
	// itself is untouched and nothing is persisted
	gt.NoError(t, view.Escalate(ctx))
	view.Wait()
	gt.Number(t, recorder.CountByLevel(types.NotifyLevelWarning)).Equal(1)
	gt.Value(t, view.Incident().Severity).Equal(types.SeverityHigh)
	gt.Value(t, view.Incident().Status).Equal(types.IncidentStatusOpen)

	mu.Lock()
	gt.Number(t, patches).Equal(0)
	mu.Unlock()

	// Escalating again just pages again
	gt.NoError(t, view.Escalate(ctx))
	gt.Number(t, recorder.CountByLevel(types.NotifyLevelWarning)).Equal(2)

	view.Close()
	err := view.Escalate(ctx)
	gt.Bool(t, errors.Is(err, usecase.ErrViewClosed)).True()
}

func TestIncidentView_ClosedIsImmutable(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	now := time.Now().UTC()
	incident := &model.Incident{
		ID:        types.NewIncidentID(),
		Title:     "Archived outage",
		Status:    types.IncidentStatusClosed,
		Severity:  types.SeverityLow,
		CreatedBy: "admin",
		CreatedAt: now,
		UpdatedAt: now,
	}
	gt.NoError(t, backend.Incident().Create(ctx, incident)).Required()

	uc := usecase.New(backend)
	view, err := uc.OpenView(ctx, incident.ID)
	gt.NoError(t, err).Required()
	defer view.Close()

	// closed admits no mutation of any kind
	gt.Array(t, view.AvailableActions()).Length(0)
	err = view.Apply(ctx, types.ActionAcknowledge)
	gt.Bool(t, errors.Is(err, usecase.ErrActionNotAllowed)).True()
	err = view.SetSeverity(ctx, types.SeverityCritical)
	gt.Bool(t, errors.Is(err, usecase.ErrActionNotAllowed)).True()
	err = view.Assign(ctx, "U42", "sana")
	gt.Bool(t, errors.Is(err, usecase.ErrActionNotAllowed)).True()
	err = view.Escalate(ctx)
	gt.Bool(t, errors.Is(err, usecase.ErrActionNotAllowed)).True()

	gt.Value(t, view.Incident().Severity).Equal(types.SeverityLow)
	stored, err := backend.Incident().Get(ctx, incident.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Severity).Equal(types.SeverityLow)
}

func TestOpenView_NotFound(t *testing.T) {
	uc := usecase.New(memory.New())

	_, err := uc.OpenView(context.Background(), types.NewIncidentID())
	gt.Bool(t, errors.Is(err, usecase.ErrIncidentNotFound)).True()
}
