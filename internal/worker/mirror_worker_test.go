package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage/memory"
)

type fakeWriter struct {
	rows []core.Transaction
	err  error
}

func (f *fakeWriter) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, t)
	return "Transactions!A2:E2", nil
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Insert(context.Background(), core.Transaction{
		ID:        "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		Title:     "Salary",
		Amount:    500,
		SessionID: "s1",
		CreatedAt: time.Now().UTC(),
	}))
	return store
}

func TestHandleTransactionCreatedAppendsRow(t *testing.T) {
	writer := &fakeWriter{}
	w := NewMirrorWorker(seed(t), writer)

	err := w.HandleTransactionCreated(context.Background(),
		amqp.NewTransactionCreatedMessage("6f9619ff-8b86-d011-b42d-00c04fc964ff", "s1"))
	require.NoError(t, err)

	require.Len(t, writer.rows, 1)
	assert.Equal(t, "Salary", writer.rows[0].Title)
	assert.Equal(t, 500.0, writer.rows[0].Amount)
}

func TestHandleTransactionCreatedSkipsUnknownRow(t *testing.T) {
	writer := &fakeWriter{}
	w := NewMirrorWorker(seed(t), writer)

	// wrong session: the row must not resolve
	err := w.HandleTransactionCreated(context.Background(),
		amqp.NewTransactionCreatedMessage("6f9619ff-8b86-d011-b42d-00c04fc964ff", "other"))
	require.NoError(t, err)
	assert.Empty(t, writer.rows)
}

func TestHandleTransactionCreatedPropagatesWriterError(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewMirrorWorker(seed(t), &fakeWriter{err: boom})

	err := w.HandleTransactionCreated(context.Background(),
		amqp.NewTransactionCreatedMessage("6f9619ff-8b86-d011-b42d-00c04fc964ff", "s1"))
	assert.ErrorIs(t, err, boom)
}
