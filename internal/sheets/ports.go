package sheets

import (
	"context"

	"ledger/internal/core"
)

// TransactionWriter mirrors ledger rows to an external spreadsheet.
type TransactionWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
