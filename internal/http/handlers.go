package http

import (
	"errors"
	"net/http"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/session"
)

type listResponse struct {
	Transactions []core.Transaction `json:"transactions"`
}

// getResponse encodes as {} when the transaction is absent.
type getResponse struct {
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

type balanceResponse struct {
	Balance core.Balance `json:"balance"`
}

// handleListTransactions answers with the caller's transactions. Reads never
// mint a session: without a cookie the list is empty.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	sessionID := session.FromContext(r.Context())

	items, err := s.ledger.List(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}

	NewJSONResponse().JSON(listResponse{Transactions: items}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	sessionID := session.FromContext(r.Context())

	t, err := s.ledger.Get(r.Context(), r.PathValue("id"), sessionID)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}

	NewJSONResponse().JSON(getResponse{Transaction: t}).Write(w)
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	sessionID := session.FromContext(r.Context())

	balance, err := s.ledger.Balance(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err, applog.OpBalance)
		return
	}

	NewJSONResponse().JSON(balanceResponse{Balance: balance}).Write(w)
}

// handleCreateTransaction validates the body before resolving the session.
// A new session cookie is only sent once the insert succeeded.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := ParseCreateTransaction(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpValidate)
		return
	}

	sessionID := session.FromContext(r.Context())
	minted := sessionID == ""
	if minted {
		sessionID = s.sessions.Mint()
	}

	t, err := s.ledger.Create(r.Context(), in, sessionID)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}

	if minted {
		s.sessions.SetCookie(w, sessionID)
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogTransactionCreated(r.Context(), t.ID, t.Amount, sessionID, minted)

	NewJSONResponse().Status(http.StatusCreated).Empty().Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings the repository.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Ready(r.Context()); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Readiness check failed", err, applog.ErrorTypeDatabase, applog.OpReady, nil)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// writeError maps domain errors to status codes. Only validation failures
// reach the client in detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	sl := applog.NewStructuredLogger(applog.FromContext(ctx))

	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		applog.FromContext(ctx).WarnContext(ctx, "Request rejected",
			applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err.Error())
		ValidationErrorResponse(verr).Write(w)
	case errors.Is(err, core.ErrStorage):
		sl.LogError(ctx, "Storage failure", err, applog.ErrorTypeDatabase, op, nil)
		InternalServerError().Write(w)
	default:
		sl.LogError(ctx, "Unexpected error", err, applog.ErrorTypeInternal, op, nil)
		InternalServerError().Write(w)
	}
}
