// Package api serves the progress CRUD endpoints, notifier control and the dashboard.
package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/progress"
)

// HeaderAPIKey carries the shared secret on authenticated requests.
const HeaderAPIKey = "X-API-KEY"

// Controller starts and stops the notifier. *supervisor.Supervisor satisfies it.
type Controller interface {
	Start() (string, error)
	Stop() (string, error)
	Status() string
	Restart(ctx context.Context) (string, error)
}

// Options configures a Server.
type Options struct {
	// APIKey is compared against the X-API-KEY header. Empty rejects every request.
	APIKey string
	// ControlRequiresKey puts the notifier control endpoints behind the key as well.
	ControlRequiresKey bool
}

// Server wires the HTTP routes to the progress service and the notifier controller.
type Server struct {
	service    *progress.Service
	controller Controller
	mcp        http.Handler
	opts       Options
}

// New creates a server. controller and mcp may be nil; their routes then answer 503
// and 404 respectively.
func New(service *progress.Service, controller Controller, mcp http.Handler, opts Options) *Server {
	return &Server{
		service:    service,
		controller: controller,
		mcp:        mcp,
		opts:       opts,
	}
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.opts.ControlRequiresKey {
			r.Use(s.requireKey)
		}
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/restart", s.handleRestart)
		r.Get("/status", s.handleStatus)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireKey)

		r.Get("/tasks", s.handleListTasks)
		r.Get("/progress", s.handleProgress)

		r.Post("/task", s.handleCreateTask)
		r.Route("/task/{task}", func(r chi.Router) {
			r.Put("/", s.handleRenameTask)
			r.Delete("/", s.handleDeleteTask)
			r.Put("/activate", s.handleActivateTask)

			r.Post("/category", s.handleCreateCategory)
			r.Route("/category/{category}", func(r chi.Router) {
				r.Put("/", s.handleRenameCategory)
				r.Delete("/", s.handleDeleteCategory)

				r.Post("/note", s.handleSetNote)
				r.Delete("/note", s.handleClearNote)

				r.Post("/task", s.handleCreateSubtask)
				r.Put("/task/{subtask}", s.handleToggleSubtask)
				r.Delete("/task/{subtask}", s.handleDeleteSubtask)
			})
		})
	})

	if s.mcp != nil {
		r.With(s.requireKey).Handle("/mcp", s.mcp)
	}

	return r
}

// requireKey rejects requests whose X-API-KEY does not match the configured secret.
func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(HeaderAPIKey)
		if s.opts.APIKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.APIKey)) != 1 {
			writeMessage(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through the project logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Info("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
