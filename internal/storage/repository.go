package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.Repository = (*SQLiteRepository)(nil)

const busyTimeoutMs = 5000

type SQLiteRepository struct {
	db *sql.DB
}

// DSN builds the modernc connection string for a database file.
func DSN(dbPath string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", dbPath, busyTimeoutMs)
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert implements ledger.Repository
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, title, amount, session_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Amount, nullString(t.SessionID), t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount", t.Amount,
		"session_id", t.SessionID)

	return nil
}

// ListBySession implements ledger.Repository
func (r *SQLiteRepository) ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount, session_id, created_at FROM transactions
		 WHERE session_id = ? ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// FindByID implements ledger.Repository
func (r *SQLiteRepository) FindByID(ctx context.Context, id, sessionID string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, amount, session_id, created_at FROM transactions
		 WHERE id = ? AND session_id = ? LIMIT 1`, id, sessionID)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SumBySession implements ledger.Repository
func (r *SQLiteRepository) SumBySession(ctx context.Context, sessionID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0.0) FROM transactions WHERE session_id = ?`, sessionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		sessionID sql.NullString
		createdAt time.Time
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Amount, &sessionID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	t.SessionID = sessionID.String
	t.CreatedAt = createdAt.UTC()
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
