package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"ledger/internal/ledger"
	applog "ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/session"
)

const DefaultMountPath = "/transactions"

// Options configures the HTTP surface.
type Options struct {
	MountPath          string
	RateLimitPerMinute int
	// TrustedProxies are CIDRs whose forwarding headers are honoured.
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	logger   *applog.Logger
	ledger   *ledger.Service
	sessions *session.Resolver
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	clientIP *security.ClientIPResolver

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *ledger.Service, sessions *session.Resolver, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	clientIP := security.NewClientIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err.Error())
		}
	}
	s := &Server{
		logger:   logger,
		ledger:   svc,
		sessions: sessions,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(clientIP.ExtractClientIP),
		clientIP: clientIP,
	}

	mux := http.NewServeMux()
	s.routes(mux, opts.MountPath)

	var handler http.Handler = mux
	handler = s.sessionContext(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes mounts the ledger under mountPath. "GET {base}/account-balance" is
// more specific than "GET {base}/{id}" so the mux prefers it.
func (s *Server) routes(mux *http.ServeMux, mountPath string) {
	base := strings.TrimSuffix(mountPath, "/")
	if mountPath == "" {
		base = DefaultMountPath
	}

	create := s.limiter.Middleware(s.clientIP.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(http.HandlerFunc(s.handleCreateTransaction))

	mux.HandleFunc("GET "+base+"/{$}", s.handleListTransactions)
	mux.Handle("POST "+base+"/{$}", create)
	if base != "" {
		mux.HandleFunc("GET "+base, s.handleListTransactions)
		mux.Handle("POST "+base, create)
	}
	mux.HandleFunc("GET "+base+"/account-balance", s.handleAccountBalance)
	mux.HandleFunc("GET "+base+"/{id}", s.handleGetTransaction)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
}

// sessionContext stores the presented session id in the request context and
// tags the request logger with it. It never mints a session.
func (s *Server) sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessions.Lookup(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := session.WithID(r.Context(), id)
		ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldSessionID, id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.Info("HTTP server stopped",
			applog.FieldOperation, applog.OpShutdown,
			"total_requests", s.tracer.TotalRequests(),
			"rate_limited", s.limiter.Hits(),
			"rate_limit_clients", s.limiter.ActiveClients())
	})
	return shutdownErr
}
