package ledger

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// Repository persists transactions. Every read filters by session id.
	Repository interface {
		Insert(ctx context.Context, t core.Transaction) error
		ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error)
		// FindByID returns nil, nil when no transaction matches both id and session.
		FindByID(ctx context.Context, id, sessionID string) (*core.Transaction, error)
		SumBySession(ctx context.Context, sessionID string) (float64, error)
		Ping(ctx context.Context) error
	}

	// EventPublisher announces newly created transactions.
	EventPublisher interface {
		PublishTransactionCreated(ctx context.Context, t core.Transaction) error
	}
)
