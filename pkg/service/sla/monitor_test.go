package sla_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/service/sla"
)

func TestMonitor_TicksAndStops(t *testing.T) {
	inc := openIncident(types.SeverityHigh)

	var mu sync.Mutex
	var reports []*sla.Report

	monitor := sla.NewMonitor(
		sla.NewCalculator(nil),
		func() *model.Incident { return inc },
		func(r *sla.Report) {
			mu.Lock()
			defer mu.Unlock()
			reports = append(reports, r)
		},
		sla.WithInterval(5*time.Millisecond),
	)

	monitor.Start(context.Background())

	// Wait until a few ticks beyond the immediate first report have fired
	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(reports)
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	monitor.Stop()
	monitor.Stop() // stopping twice is fine

	mu.Lock()
	count := len(reports)
	gt.Number(t, count).GreaterOrEqual(3)
	mu.Unlock()

	// No tick fires after Stop has returned
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	gt.Number(t, len(reports)).Equal(count)
	mu.Unlock()
}

func TestMonitor_Refresh(t *testing.T) {
	inc := openIncident(types.SeverityHigh)

	var mu sync.Mutex
	var reports []*sla.Report

	// An interval far beyond the test lifetime: only the immediate first
	// report and explicit refreshes can fire
	monitor := sla.NewMonitor(
		sla.NewCalculator(nil),
		func() *model.Incident { return inc },
		func(r *sla.Report) {
			mu.Lock()
			defer mu.Unlock()
			reports = append(reports, r)
		},
		sla.WithInterval(time.Hour),
	)

	monitor.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(reports)
		mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	monitor.Refresh()

	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(reports)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	monitor.Stop()

	mu.Lock()
	gt.Number(t, len(reports)).GreaterOrEqual(2)
	mu.Unlock()
}

func TestMonitor_ReadsLatestSnapshot(t *testing.T) {
	var mu sync.Mutex
	inc := openIncident(types.SeverityHigh)

	var gotAck bool
	monitor := sla.NewMonitor(
		sla.NewCalculator(nil),
		func() *model.Incident {
			mu.Lock()
			defer mu.Unlock()
			return inc
		},
		func(r *sla.Report) {
			if r.TimeToAcknowledge != nil {
				mu.Lock()
				gotAck = true
				mu.Unlock()
			}
		},
		sla.WithInterval(5*time.Millisecond),
	)

	monitor.Start(context.Background())

	// Swap in an acknowledged value mid-flight; the monitor must pick it up
	mu.Lock()
	ack := inc.CreatedAt.Add(time.Minute)
	updated := inc.WithStatus(types.IncidentStatusAcknowledged, ack)
	inc = updated
	mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ok := gotAck
		mu.Unlock()
		if ok {
			break
		}
		time.Sleep(time.Millisecond)
	}

	monitor.Stop()

	mu.Lock()
	gt.Bool(t, gotAck).True()
	mu.Unlock()
}
