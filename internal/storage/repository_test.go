package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func tx(title string, amount float64, session string, at time.Time) core.Transaction {
	return core.Transaction{
		ID:        uuid.NewString(),
		Title:     title,
		Amount:    amount,
		SessionID: session,
		CreatedAt: at,
	}
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	dep := tx("New deposit transaction", 500, "A", base)
	wd := tx("New withdrawal transaction", -200, "A", base.Add(time.Minute))
	other := tx("Other session", 1000, "B", base)
	orphan := tx("No session", 7, "", base)

	for _, r := range []core.Transaction{dep, wd, other, orphan} {
		require.NoError(t, repo.Insert(ctx, r))
	}

	list, err := repo.ListBySession(ctx, "A")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, dep.ID, list[0].ID)
	assert.Equal(t, "New deposit transaction", list[0].Title)
	assert.Equal(t, 500.0, list[0].Amount)
	assert.Equal(t, "A", list[0].SessionID)
	assert.True(t, list[0].CreatedAt.Equal(base), "created_at=%v", list[0].CreatedAt)
	assert.Equal(t, -200.0, list[1].Amount)

	total, err := repo.SumBySession(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 300.0, total)

	got, err := repo.FindByID(ctx, other.ID, "B")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Other session", got.Title)

	mismatched, err := repo.FindByID(ctx, other.ID, "A")
	require.NoError(t, err)
	assert.Nil(t, mismatched)
}

func TestSQLiteRepositoryEmptySession(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	total, err := repo.SumBySession(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)

	list, err := repo.ListBySession(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	require.NoError(t, repo.Insert(ctx, tx("orphan", 3, "", time.Now())))
	list, err = repo.ListBySession(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list, "NULL session_id must not match an empty filter")
}

func TestSQLiteRepositoryDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	row := tx("once", 1, "A", time.Now())
	require.NoError(t, repo.Insert(ctx, row))
	assert.Error(t, repo.Insert(ctx, row))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, RunMigrations(DSN(path)))

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.NoError(t, reopened.Ping(context.Background()))
}
