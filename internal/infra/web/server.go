package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/infra/metrics"
	"portfolio-assistant/internal/infra/worker"
	"portfolio-assistant/internal/usecase"
)

// Assistant is the slice of the application facade the HTTP layer needs.
type Assistant interface {
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
	History(ctx context.Context, sessionID string) ([]model.Turn, error)
}

// sessionLocker serializes turn handling per session.
type sessionLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// rateLimiter caps requests per session per route.
type rateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	assistant   Assistant
	analyticsUC usecase.AnalyticsUseCase
	notifUC     usecase.NotificationUseCase
	auth        *AuthManager
	adminPass   string
	locker      sessionLocker
	limiter     rateLimiter
	pool        *worker.Pool

	chatLimit  int
	chatWindow time.Duration
	lockTTL    time.Duration

	log *zerolog.Logger
}

func NewServer(
	assistant Assistant,
	analyticsUC usecase.AnalyticsUseCase,
	notifUC usecase.NotificationUseCase,
	auth *AuthManager,
	adminPass string,
	locker sessionLocker,
	limiter rateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		assistant:   assistant,
		analyticsUC: analyticsUC,
		notifUC:     notifUC,
		auth:        auth,
		adminPass:   adminPass,
		locker:      locker,
		limiter:     limiter,
		chatLimit:   20,
		chatWindow:  time.Minute,
		lockTTL:     30 * time.Second,
		log:         logger,
	}
}

// SetPool makes page event writes asynchronous through the worker pool.
func (s *Server) SetPool(p *worker.Pool) { s.pool = p }

// Router builds the chi router with all public and admin routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.chatHandler())
		r.Get("/chat/history", s.historyHandler())
		r.Post("/events", s.eventsHandler())

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.loginHandler())
			r.Post("/logout", s.logoutHandler())

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/stats", s.statsHandler())
				r.Get("/notifications", s.notificationsHandler())
			})
		})
	})
	return r
}

// countRequests records route/method/status for every request.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.IncHTTPRequest(route, r.Method, ww.Status())
	})
}

// requireAdmin gates the dashboard endpoints behind a valid admin token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) passwordMatches(candidate string) bool {
	if s.adminPass == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.adminPass)) == 1
}
