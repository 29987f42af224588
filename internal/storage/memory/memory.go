package memory

import (
	"context"
	"errors"
	"sync"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

var _ ledger.Repository = (*Store)(nil)

// Store is an in-process repository with the same filtering semantics as
// the SQLite one. Rows without a session never match a session filter.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	ids   map[string]struct{}
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

func (s *Store) Insert(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[t.ID]; dup {
		return errors.New("duplicate transaction id " + t.ID)
	}
	s.ids[t.ID] = struct{}{}
	s.items = append(s.items, t)
	return nil
}

func (s *Store) ListBySession(_ context.Context, sessionID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, t := range s.items {
		if owned(t, sessionID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) FindByID(_ context.Context, id, sessionID string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id && owned(t, sessionID) {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) SumBySession(_ context.Context, sessionID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, t := range s.items {
		if owned(t, sessionID) {
			total += t.Amount
		}
	}
	return total, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func owned(t core.Transaction, sessionID string) bool {
	return t.SessionID != "" && t.SessionID == sessionID
}
