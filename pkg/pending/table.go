package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/xcallback/internal/logging"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/ports"
)

// ErrDuplicateID is returned when a request id is already pending.
var ErrDuplicateID = errors.New("request id already pending")

// Table holds requests awaiting a response, keyed by correlation id.
// Each entry leaves the table exactly once: resolved, discarded, or never
// (the process ends first).
type Table struct {
	mu      sync.Mutex
	entries map[string]*domain.Request

	journal ports.Journal // Optional mirror of the entries
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Table.
type Option func(*Table)

// WithJournal mirrors pending entries into a journal.
func WithJournal(journal ports.Journal) Option {
	return func(t *Table) {
		t.journal = journal
	}
}

// WithLogger configures a logger for the Table.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithClock overrides the time source used for journal records.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		t.now = now
	}
}

// NewTable creates an empty pending-request table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		entries: make(map[string]*domain.Request),
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register stores a request under its id.
func (t *Table) Register(ctx context.Context, req *domain.Request) error {
	if req == nil || req.ID == "" {
		return fmt.Errorf("request id cannot be empty")
	}

	t.mu.Lock()
	if _, exists := t.entries[req.ID]; exists {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, req.ID)
	}
	t.entries[req.ID] = req
	t.mu.Unlock()

	if t.journal != nil {
		if err := t.journal.Save(ctx, req.Record(t.now())); err != nil {
			t.logger.Warn("Failed to journal pending request",
				"request_id", req.ID,
				"err", err,
			)
		}
	}
	return nil
}

// Resolve removes the entry and invokes its handler with result.
// It returns false, without side effects, if the id is not pending.
func (t *Table) Resolve(ctx context.Context, id string, result domain.Result) bool {
	req, ok := t.take(ctx, id)
	if !ok {
		return false
	}
	if req.Handler != nil {
		req.Handler(result)
	}
	return true
}

// Discard removes the entry without invoking its handler.
func (t *Table) Discard(ctx context.Context, id string) bool {
	_, ok := t.take(ctx, id)
	return ok
}

// Get returns the pending request for id without removing it.
func (t *Table) Get(id string) (*domain.Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.entries[id]
	return req, ok
}

// Len returns the number of pending requests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// IDs lists pending ids in ascending order.
func (t *Table) IDs() []string {
	t.mu.Lock()
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// Journal returns the configured journal, if any.
func (t *Table) Journal() ports.Journal {
	return t.journal
}

// take removes and returns an entry. The handler is always invoked by the
// caller after the lock is released.
func (t *Table) take(ctx context.Context, id string) (*domain.Request, bool) {
	t.mu.Lock()
	req, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	t.mu.Unlock()

	if ok && t.journal != nil {
		if err := t.journal.Delete(ctx, id); err != nil {
			t.logger.Warn("Failed to remove journaled request",
				"request_id", id,
				"err", err,
			)
		}
	}
	return req, ok
}
