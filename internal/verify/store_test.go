package verify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cajomferro/shelley-sub001/internal/infrastructure/database"
	_ "github.com/cajomferro/shelley-sub001/migrations" // registers the schema
)

func setupReportStore(t *testing.T) *SQLiteReportStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: ":memory:", BusyTimeout: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	require.NoError(t, db.Migrate(ctx))
	return NewSQLiteReportStore(db.DB)
}

func TestSQLiteReportStore(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	older := Report{
		ID:         uuid.New(),
		Device:     "DeskLamp",
		Kind:       KindComposition,
		Error:      "ledA.begin -> ledA.off",
		Composite:  true,
		Components: 4,
		Behaviours: 6,
		Duration:   250 * time.Microsecond,
		CheckedAt:  base,
	}
	newer := Report{
		ID:         uuid.New(),
		Device:     "DeskLamp",
		Valid:      true,
		Composite:  true,
		Components: 4,
		Behaviours: 6,
		Duration:   time.Millisecond,
		CheckedAt:  base.Add(100 * time.Millisecond),
	}
	other := Report{ID: uuid.New(), Device: "Led", Valid: true, CheckedAt: base}

	for _, r := range []Report{older, newer, other} {
		require.NoError(t, store.Save(ctx, r))
	}

	got, err := store.List(ctx, "DeskLamp", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0])
	assert.Equal(t, older, got[1])

	limited, err := store.List(ctx, "DeskLamp", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer.ID, limited[0].ID)

	none, err := store.List(ctx, "Timer", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteReportStoreDuplicateID(t *testing.T) {
	store := setupReportStore(t)
	ctx := context.Background()

	r := Report{ID: uuid.New(), Device: "Led", Valid: true, CheckedAt: time.Now()}
	require.NoError(t, store.Save(ctx, r))
	assert.Error(t, store.Save(ctx, r))
}
