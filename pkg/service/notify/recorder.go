package notify

import (
	"context"
	"sync"

	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

// Recorder keeps notification events in memory. Used by tests and as a
// buffer for the console's notification feed.
type Recorder struct {
	mu     sync.Mutex
	events []model.Notification
}

var _ interfaces.Notifier = &Recorder{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(ctx context.Context, event model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of all recorded events in arrival order
func (r *Recorder) Events() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]model.Notification, len(r.events))
	copy(events, r.events)
	return events
}

// CountByLevel returns how many recorded events carry the given level
func (r *Recorder) CountByLevel(level types.NotifyLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int
	for _, event := range r.events {
		if event.Level == level {
			count++
		}
	}
	return count
}

// Reset drops all recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
