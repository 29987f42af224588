// Package session maps requests to anonymous, cookie-carried session ids.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCookieName = "sessionId"
	DefaultMaxAge     = 7 * 24 * time.Hour
)

type ctxKey struct{}

// Resolver reads the session cookie and mints one when it is missing.
type Resolver struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool

	now   func() time.Time
	newID func() string
}

func NewResolver(maxAge time.Duration, secure bool) *Resolver {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Resolver{
		CookieName: DefaultCookieName,
		MaxAge:     maxAge,
		Secure:     secure,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Lookup returns the session id presented by the client, if any.
func (res *Resolver) Lookup(r *http.Request) (string, bool) {
	c, err := r.Cookie(res.CookieName)
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(c.Value)
	if id == "" {
		return "", false
	}
	return id, true
}

// Resolve returns the existing session id or mints a new one, setting the
// cookie on w. The cookie is written at most once per call.
func (res *Resolver) Resolve(w http.ResponseWriter, r *http.Request) string {
	if id, ok := res.Lookup(r); ok {
		return id
	}

	id := res.Mint()
	res.SetCookie(w, id)
	return id
}

// Mint returns a fresh session id without touching the response.
func (res *Resolver) Mint() string {
	return res.newID()
}

// SetCookie writes the session cookie for id.
func (res *Resolver) SetCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     res.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(res.MaxAge / time.Second),
		Expires:  res.now().Add(res.MaxAge),
		HttpOnly: true,
		Secure:   res.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithID stores the resolved session id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the session id stored by WithID, or "".
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
