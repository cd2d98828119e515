package sla

import (
	"context"
	"sync"
	"time"

	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/utils/logging"
)

const defaultTickInterval = time.Second

// Monitor re-evaluates an incident's SLA figures on a fixed tick while a
// view displays it. Each displaying component owns its monitor, calls
// Refresh from its change callback so the report tracks the incident and not
// just the clock, and must stop it on teardown; a stopped monitor never
// fires again.
type Monitor struct {
	calc     *Calculator
	snapshot func() *model.Incident
	onTick   func(*Report)
	interval time.Duration
	clock    func() time.Time

	refreshCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
}

type MonitorOption func(*Monitor)

// WithInterval overrides the 1-second tick
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithMonitorClock replaces the time source, for tests
func WithMonitorClock(clock func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.clock = clock
	}
}

// NewMonitor builds a monitor. snapshot must return the latest incident
// value; onTick receives the freshly computed report.
func NewMonitor(calc *Calculator, snapshot func() *model.Incident, onTick func(*Report), opts ...MonitorOption) *Monitor {
	m := &Monitor{
		calc:      calc,
		snapshot:  snapshot,
		onTick:    onTick,
		interval:  defaultTickInterval,
		clock:     func() time.Time { return time.Now().UTC() },
		refreshCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the tick loop in a background goroutine. The first report is
// delivered immediately, not after the first interval.
func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// Refresh requests an immediate recompute outside the tick cadence, for use
// when the incident value changes. Never blocks; refreshes collapse while
// one is pending.
func (m *Monitor) Refresh() {
	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

// Stop tears the monitor down and waits until the loop has exited. After
// Stop returns, onTick is guaranteed not to fire again. Stopping twice is a
// no-op.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	<-m.doneCh
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.doneCh)

	m.tick()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick()

		case <-m.refreshCh:
			m.tick()

		case <-m.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Debug("SLA monitor context cancelled")
			return
		}
	}
}

func (m *Monitor) tick() {
	incident := m.snapshot()
	if incident == nil {
		return
	}
	m.onTick(m.calc.Assess(incident, m.clock()))
}
