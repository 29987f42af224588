// Package ledger implements the session-scoped transaction ledger.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// Service performs ledger operations against an injected repository.
// It holds no state of its own.
type Service struct {
	repo      Repository
	publisher EventPublisher
	now       func() time.Time
}

// NewService wires the repository and an optional publisher (may be nil).
func NewService(repo Repository, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns every transaction owned by sessionID.
func (s *Service) List(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	if sessionID == "" {
		return []core.Transaction{}, nil
	}
	items, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w: %w", core.ErrStorage, err)
	}
	if items == nil {
		items = []core.Transaction{}
	}
	return items, nil
}

// Get returns the transaction matching both rawID and sessionID, or nil.
// A malformed id fails validation before storage is touched.
func (s *Service) Get(ctx context.Context, rawID, sessionID string) (*core.Transaction, error) {
	id, err := core.ParseTransactionID(rawID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, nil
	}
	t, err := s.repo.FindByID(ctx, id, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w: %w", id, core.ErrStorage, err)
	}
	return t, nil
}

// Balance sums the amounts owned by sessionID. Zero when there are none.
func (s *Service) Balance(ctx context.Context, sessionID string) (core.Balance, error) {
	if sessionID == "" {
		return core.Balance{}, nil
	}
	total, err := s.repo.SumBySession(ctx, sessionID)
	if err != nil {
		return core.Balance{}, fmt.Errorf("sum transactions: %w: %w", core.ErrStorage, err)
	}
	return core.Balance{Total: total}, nil
}

// Create stores a new transaction for sessionID with its sign normalized
// and announces it. Publishing is best effort.
func (s *Service) Create(ctx context.Context, in core.CreateTransactionInput, sessionID string) (core.Transaction, error) {
	t := core.Transaction{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Amount:    in.SignedAmount(),
		SessionID: sessionID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Insert(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w: %w", core.ErrStorage, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, t); err != nil {
			// The row is committed; a lost event only affects the sheet mirror.
			slog.ErrorContext(ctx, "Failed to publish transaction created event",
				"transaction_id", t.ID,
				"error", err,
				"component", "ledger",
				"operation", "publish")
		}
	}

	return t, nil
}

// Ready reports whether the repository is reachable.
func (s *Service) Ready(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping repository: %w: %w", core.ErrStorage, err)
	}
	return nil
}
