package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kepngern/internal/auth"
	"kepngern/internal/ledger"
	"kepngern/internal/log"
	"kepngern/internal/middleware/ratelimit"
	"kepngern/internal/middleware/security"
	"kepngern/internal/notify"
)

// Deps are the collaborators the API serves.
type Deps struct {
	Ledger        ledger.Ledger
	Notifications notify.Notifications
	Auth          *auth.Authenticator

	// Alerts renders the dashboard alert lines.
	Alerts func() []string

	// LoginLimit throttles POST /api/login per client (default: ratelimit.DefaultConfig)
	LoginLimit ratelimit.Config

	Logger *log.Logger
}

type Server struct {
	http.Server

	ledger        ledger.Ledger
	notifications notify.Notifications
	auth          *auth.Authenticator
	alerts        func() []string
	logger        *log.Logger

	ips          *security.IPResolver
	loginLimiter *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	alerts := deps.Alerts
	if alerts == nil {
		alerts = func() []string { return nil }
	}

	s := &Server{
		ledger:        deps.Ledger,
		notifications: deps.Notifications,
		auth:          deps.Auth,
		alerts:        alerts,
		logger:        logger.WithComponent(log.ComponentHTTP),
		ips:           security.NewIPResolver(),
		loginLimiter:  ratelimit.NewLimiter(deps.LoginLimit),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.RequestLogger(s.logger, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, ErrorBody{Code: CodeMethodNotAllowed, Message: "method not allowed"})
	})

	r.Get("/healthz", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.With(s.loginLimiter.Middleware(s.ips.ClientIP, s.rateLimited)).Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
			r.Get("/profile", s.handleGetProfile)
			r.Patch("/profile", s.handleUpdateProfile)

			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Put("/transactions/{id}", s.handleUpdateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Get("/summary", s.handleSummary)
			r.Get("/reports/categories", s.handleCategoryReport)

			r.Get("/budgets", s.handleListBudgets)
			r.Get("/budgets/status", s.handleBudgetStatus)
			r.Get("/budgets/alerts", s.handleBudgetAlerts)
			r.Put("/budgets/{category}", s.handleSetBudget)
			r.Delete("/budgets/{category}", s.handleDeleteBudget)

			r.Get("/notifications", s.handleListNotifications)
			r.Delete("/notifications", s.handleClearNotifications)
			r.Post("/notifications/read-all", s.handleMarkAllRead)
			r.Post("/notifications/{id}/read", s.handleMarkRead)
			r.Delete("/notifications/{id}", s.handleDeleteNotification)
		})
	})
	return r
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Login rate limit exceeded", log.FieldClientIP, s.ips.ClientIP(r))
	writeError(w, r, http.StatusTooManyRequests, ErrorBody{Code: CodeRateLimited, Message: "too many login attempts, try again later"})
}

// Shutdown stops the limiter cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
