package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"trustledger/pkg/chain"
)

// Publisher receives committed-operation events. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Stamp fills in the event id and timestamp when the caller left them empty.
func Stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}

// NopPublisher discards events. Used when no audit sink is configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }

// MemoryJournal is an append-only in-memory event sink for tests and
// single-node deployments.
type MemoryJournal struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Emit(_ context.Context, event Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, Stamp(event))
	return nil
}

// Events returns a copy of all recorded events in emission order.
func (j *MemoryJournal) Events() []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Event{}, j.events...)
}

// ByCaller returns the recorded events for one caller.
func (j *MemoryJournal) ByCaller(caller chain.Principal) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Event
	for _, event := range j.events {
		if event.Caller == caller {
			out = append(out, event)
		}
	}
	return out
}
