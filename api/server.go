/*
server.go - HTTP router, middleware configuration, and handler wiring

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind proxies
  3. requestLog: Structured request logging (zerolog)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/auth/*          Registration, login, password reset (public)
  /api/profile/*       Account settings (authenticated)
  /api/designations/*  Held credentials (authenticated)
  /api/records/*       CE records and import/export (authenticated)
  /api/requirements/*  Compliance standing and preview (authenticated)
  /api/admin/*         Operator dashboard (admin only)
  /api/scenarios/*     Demo scenarios (dev mode only)
  /*                   Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from web/dist/ when present, falling back
  to index.html for client-side routing.

SEE ALSO:
  - middleware.go: Token parsing and the auth/admin gates
  - handlers.go: Shared response helpers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/napfa"
)

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	Store    ce.Store
	Registry *ce.Registry
	Calc     *ce.Calculator
	Previews *ce.Previewer
	Napfa    *napfa.Calculator
	Snaps    *ce.Snapshotter
	Tokens   *TokenManager
	Mail     Mailer
	Log      zerolog.Logger

	// BaseURL is the public origin used to build password-reset links.
	BaseURL string

	// ResetTTL bounds how long a password-reset token stays valid.
	ResetTTL time.Duration

	// Dev enables the demo scenario endpoints.
	Dev bool

	// Clock returns "today" for every computation; tests override it to
	// pin dates.
	Clock func() ce.TimePoint

	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires the engine components around a store. The zero
// Clock means the wall clock.
func NewHandler(store ce.Store, registry *ce.Registry, tokens *TokenManager, mail Mailer, log zerolog.Logger) *Handler {
	calc := &ce.Calculator{Source: store, Registry: registry, Assignments: store}
	return &Handler{
		Store:    store,
		Registry: registry,
		Calc:     calc,
		Previews: &ce.Previewer{Calc: calc},
		Napfa:    &napfa.Calculator{Source: store},
		Snaps:    &ce.Snapshotter{Calc: calc, Users: store, Store: store},
		Tokens:   tokens,
		Mail:     mail,
		Log:      log,
		ResetTTL: time.Hour,
		Clock:    ce.Today,
	}
}

func (h *Handler) now() ce.TimePoint {
	if h.Clock != nil {
		return h.Clock()
	}
	return ce.Today()
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
			r.With(h.requireAuth).Post("/logout", h.Logout)
		})

		// Legal routes (public)
		r.Route("/legal", func(r chi.Router) {
			r.Get("/terms", h.LegalTerms)
			r.Get("/privacy", h.LegalPrivacy)
			r.Get("/disclaimer", h.LegalDisclaimer)
		})

		// Feedback submission works with or without a session
		r.With(h.optionalAuth).Post("/feedback", h.SubmitFeedback)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/email", h.UpdateEmail)
				r.Put("/password", h.UpdatePassword)
				r.Put("/napfa", h.UpdateNapfa)
			})

			r.Route("/designations", func(r chi.Router) {
				r.Get("/", h.ListDesignations)
				r.Post("/", h.AddDesignation)
				r.Delete("/{code}", h.RemoveDesignation)
			})

			r.Route("/records", func(r chi.Router) {
				r.Get("/", h.ListRecords)
				r.Post("/", h.CreateRecord)
				r.Put("/{id}", h.UpdateRecord)
				r.Delete("/{id}", h.DeleteRecord)
				r.Post("/import", h.ImportCSV)
				r.Get("/export/csv", h.ExportCSV)
				r.Get("/export/pdf", h.ExportPDF)
			})

			r.Route("/backup", func(r chi.Router) {
				r.Get("/", h.ExportBackup)
				r.Post("/", h.ImportBackup)
			})

			r.Route("/requirements", func(r chi.Router) {
				r.Get("/", h.GetRequirements)
				r.Post("/preview", h.PreviewRecord)
			})

			r.Get("/analytics", h.GetAnalytics)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Use(h.requireAdmin)

			r.Get("/stats", h.AdminStats)
			r.Get("/users", h.AdminListUsers)
			r.Get("/users/{id}/records", h.AdminUserRecords)
			r.Post("/users/{id}/toggle-admin", h.AdminToggleAdmin)

			r.Route("/feedback", func(r chi.Router) {
				r.Get("/", h.AdminListFeedback)
				r.Post("/{id}/toggle-read", h.AdminToggleFeedbackRead)
				r.Delete("/{id}", h.AdminDeleteFeedback)
			})

			r.Route("/snapshots", func(r chi.Router) {
				r.Get("/", h.AdminListSnapshots)
				r.Post("/refresh", h.AdminRefreshSnapshots)
			})
		})

		// Scenario routes (dev mode only)
		if h.Dev {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
			})
		}
	})

	// Serve static files (frontend build)
	// First try ./web/dist (development), then fall back to message
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		// Try relative to executable
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, r.URL.Path)

			// Check if file exists
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>CE Tracker</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>CE Tracker API</h1>
<p>The frontend is not built yet. Run <code>cd web && npm install && npm run build</code></p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/health">/api/health</a> - Health check</li>
<li>/api/auth/register - Create an account</li>
<li>/api/requirements - Compliance standing (requires token)</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}

// requestLogger logs each request with its status, duration, and
// request ID.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
