package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/storage/memory"
)

type countingRepo struct {
	ledger.Repository
	calls int
	err   error
}

func (c *countingRepo) Insert(ctx context.Context, t core.Transaction) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	return c.Repository.Insert(ctx, t)
}

func (c *countingRepo) ListBySession(ctx context.Context, s string) ([]core.Transaction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.Repository.ListBySession(ctx, s)
}

func (c *countingRepo) FindByID(ctx context.Context, id, s string) (*core.Transaction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.Repository.FindByID(ctx, id, s)
}

func (c *countingRepo) SumBySession(ctx context.Context, s string) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.Repository.SumBySession(ctx, s)
}

type recordingPublisher struct {
	published []core.Transaction
	err       error
}

func (p *recordingPublisher) PublishTransactionCreated(_ context.Context, t core.Transaction) error {
	p.published = append(p.published, t)
	return p.err
}

func mustInput(t *testing.T, title string, amount float64, typ string) core.CreateTransactionInput {
	t.Helper()
	in, err := core.NewCreateTransactionInput(title, amount, typ)
	require.NoError(t, err)
	return in
}

func TestCreateNormalizesSign(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New(), nil)

	dep, err := svc.Create(ctx, mustInput(t, "New deposit transaction", 500, "deposit"), "A")
	require.NoError(t, err)
	wd, err := svc.Create(ctx, mustInput(t, "New withdrawal transaction", 200, "withdrawal"), "A")
	require.NoError(t, err)

	assert.Equal(t, 500.0, dep.Amount)
	assert.Equal(t, -200.0, wd.Amount)
	assert.Equal(t, "A", dep.SessionID)
	assert.NotEqual(t, dep.ID, wd.ID)
	_, err = core.ParseTransactionID(dep.ID)
	assert.NoError(t, err)

	bal, err := svc.Balance(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 300.0, bal.Total)
}

func TestListIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New(), nil)

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, mustInput(t, title, 1, "deposit"), "A")
		require.NoError(t, err)
	}

	listA, err := svc.List(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, listA, 3)

	listB, err := svc.List(ctx, "B")
	require.NoError(t, err)
	assert.NotNil(t, listB)
	assert.Empty(t, listB)
}

func TestBalanceZeroForEmptySession(t *testing.T) {
	svc := ledger.NewService(memory.New(), nil)
	bal, err := svc.Balance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bal.Total)
}

func TestGetRequiresMatchingSession(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New(), nil)

	created, err := svc.Create(ctx, mustInput(t, "mine", 42, "deposit"), "A")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID, "A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mine", got.Title)

	other, err := svc.Get(ctx, created.ID, "B")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestGetMalformedIDSkipsStorage(t *testing.T) {
	repo := &countingRepo{Repository: memory.New()}
	svc := ledger.NewService(repo, nil)

	_, err := svc.Get(context.Background(), "not-a-uuid", "A")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
	assert.Equal(t, 0, repo.calls)
}

func TestReadsWithoutSessionSkipStorage(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{Repository: memory.New()}
	svc := ledger.NewService(repo, nil)

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	bal, err := svc.Balance(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, bal.Total)

	got, err := svc.Get(ctx, "6f9619ff-8b86-d011-b42d-00c04fc964ff", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, 0, repo.calls)
}

func TestStorageFailuresWrapErrStorage(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	svc := ledger.NewService(&countingRepo{Repository: memory.New(), err: boom}, nil)

	_, err := svc.List(ctx, "A")
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.ErrorIs(t, err, boom)

	_, err = svc.Balance(ctx, "A")
	assert.ErrorIs(t, err, core.ErrStorage)

	_, err = svc.Get(ctx, "6f9619ff-8b86-d011-b42d-00c04fc964ff", "A")
	assert.ErrorIs(t, err, core.ErrStorage)

	_, err = svc.Create(ctx, mustInput(t, "x", 1, "deposit"), "A")
	assert.ErrorIs(t, err, core.ErrStorage)
}

func TestCreatePublishesBestEffort(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := ledger.NewService(store, pub)

	created, err := svc.Create(ctx, mustInput(t, "x", 5, "withdrawal"), "A")
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Equal(t, created.ID, pub.published[0].ID)
	stored, err := store.ListBySession(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
