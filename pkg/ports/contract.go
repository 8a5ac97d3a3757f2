package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract runs a suite of tests to verify that a Journal
// implementation adheres to the defined interface contract.
func RunJournalContract(t *testing.T, journal Journal) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := domain.PendingRecord{
			ID:        prefix + "-save",
			Scheme:    "provider",
			Action:    "open",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}

		require.NoError(t, journal.Save(ctx, rec), "Save should not return error")

		loaded, err := journal.Load(ctx, rec.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Scheme, loaded.Scheme)
		assert.Equal(t, rec.Action, loaded.Action)
		assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt), "CreatedAt should round trip")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := journal.Load(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, journal.Save(ctx, domain.PendingRecord{ID: id, Scheme: "s", Action: "a"}))

		require.NoError(t, journal.Delete(ctx, id), "Delete should not return error")

		_, err := journal.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")

		assert.NoError(t, journal.Delete(ctx, id), "Deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := prefix + "-1"
		id2 := prefix + "-2"
		_ = journal.Save(ctx, domain.PendingRecord{ID: id1, Scheme: "s", Action: "a"})
		_ = journal.Save(ctx, domain.PendingRecord{ID: id2, Scheme: "s", Action: "b"})

		defer func() {
			_ = journal.Delete(ctx, id1)
			_ = journal.Delete(ctx, id2)
		}()

		ids, err := journal.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
