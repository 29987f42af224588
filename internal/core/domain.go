package core

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

type (
	TransactionType string

	// Transaction is a single ledger entry. Amount is signed: deposits are
	// positive, withdrawals negative. An empty SessionID maps to NULL.
	Transaction struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Amount    float64   `json:"amount"`
		SessionID string    `json:"session_id,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Balance is the signed sum of a session's transaction amounts.
	Balance struct {
		Total float64 `json:"total"`
	}

	// CreateTransactionInput holds a validated creation request.
	// Build it with NewCreateTransactionInput.
	CreateTransactionInput struct {
		Title  string
		Amount float64
		Type   TransactionType
	}
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Deposit, Withdrawal:
		return true
	default:
		return false
	}
}

// NewCreateTransactionInput checks the creation request and returns a
// *ValidationError listing every violated constraint. The title is kept
// exactly as given; whitespace only matters for the emptiness check.
func NewCreateTransactionInput(title string, amount float64, typ string) (CreateTransactionInput, error) {
	verr := &ValidationError{}

	if strings.TrimSpace(title) == "" {
		verr.Add("title", "title is required")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		verr.Add("amount", "amount must be a finite number")
	}
	t := TransactionType(strings.TrimSpace(typ))
	if !t.IsValid() {
		verr.Add("type", "type must be one of [deposit withdrawal]")
	}

	if verr.HasIssues() {
		return CreateTransactionInput{}, verr
	}
	return CreateTransactionInput{Title: title, Amount: amount, Type: t}, nil
}

// SignedAmount returns the amount as it is stored: withdrawals are negated.
func (in CreateTransactionInput) SignedAmount() float64 {
	if in.Type == Withdrawal {
		return in.Amount * -1
	}
	return in.Amount
}

// ParseTransactionID accepts a canonical UUID string and returns it in
// lower-case form.
func ParseTransactionID(s string) (string, error) {
	s = strings.TrimSpace(s)
	// uuid.Parse also accepts urn and braced forms; only the 36 char form is an id.
	if len(s) != 36 {
		return "", NewValidationError("id", "id must be a valid uuid")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", NewValidationError("id", "id must be a valid uuid")
	}
	return id.String(), nil
}
