package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/ledger"
	"ledger/internal/sheets"
)

// MirrorWorker copies newly created transactions from storage to a spreadsheet.
type MirrorWorker struct {
	repo   ledger.Repository
	writer sheets.TransactionWriter
}

func NewMirrorWorker(repo ledger.Repository, writer sheets.TransactionWriter) *MirrorWorker {
	return &MirrorWorker{repo: repo, writer: writer}
}

// HandleTransactionCreated loads the announced row and appends it to the sheet.
// A row that no longer resolves is skipped so the message is not redelivered forever.
func (w *MirrorWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	slog.InfoContext(ctx, "Processing transaction created message",
		"id", msg.ID,
		"session_id", msg.SessionID)

	t, err := w.repo.FindByID(ctx, msg.ID, msg.SessionID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	if t == nil {
		slog.WarnContext(ctx, "Transaction not found, skipping mirror",
			"id", msg.ID,
			"session_id", msg.SessionID)
		return nil
	}

	ref, err := w.writer.AppendTransaction(ctx, *t)
	if err != nil {
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", t.ID,
		"sheets_ref", ref)
	return nil
}
