package ports

import (
	"context"

	"github.com/aretw0/xcallback/pkg/domain"
)

// Journal mirrors the pending-request table outside the process memory,
// so in-flight requests can be inspected and orphans found after a restart.
// Handlers are never journaled.
type Journal interface {
	// Save records a pending request.
	Save(ctx context.Context, rec domain.PendingRecord) error

	// Load returns a record by id.
	// Returns domain.ErrRecordNotFound if the id is unknown.
	Load(ctx context.Context, id string) (domain.PendingRecord, error)

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every recorded id.
	List(ctx context.Context) ([]string, error)
}
