package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/models"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// corsHandler allows cross-origin API calls only from the configured
// origins. With none configured the API is same-origin only. Wildcard
// origins never receive the session cookie.
func (h *Handlers) corsHandler() func(http.Handler) http.Handler {
	if len(h.CORSOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	credentials := true
	for _, origin := range h.CORSOrigins {
		if strings.Contains(origin, "*") {
			credentials = false
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: credentials,
		MaxAge:           300,
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(h.corsHandler())
	r.Use(h.Sessions.Authenticate)

	// Static files (served from embedded filesystem)
	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	}

	// Pages
	r.Get("/", h.handleIndex)
	r.Get("/live", h.handleLivePage)

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// Public API
	r.Get("/api/live", h.handleLiveBoard)
	r.Get("/api/competitions", h.handleListCompetitions)
	r.Get("/api/competitions/{id}", h.handleGetCompetition)
	r.Get("/api/competitions/{id}/leaderboard", h.handleCompetitionLeaderboard)
	r.Get("/api/calendar", h.handleCalendar)
	r.Get("/api/results", h.handleSearchResults)
	r.Get("/api/gymnasts/{id}/profile", h.handleGymnastProfile)
	r.Get("/api/apparatus", h.handleListApparatus)
	r.Get("/api/levels", h.handleListLevels)

	// Accounts
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/logout", h.handleLogout)
	r.Get("/api/auth/me", h.handleMe)

	// Any logged-in user
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole())
		r.Post("/api/applications", h.handleApply)
		r.Put("/api/me/profile", h.handleUpdateProfile)
	})

	// Judges and admins
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin, models.RoleJudge))
		r.Get("/api/scoring", h.handleScoringDashboard)
		r.Post("/api/scores", h.handleSubmitScore)
		r.Get("/api/scores", h.handleGetScore)
		r.Get("/api/competitions/{id}/progress", h.handleProgress)
	})

	// Admin API
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))

		// Clubs
		r.Get("/api/admin/clubs", h.handleListClubs)
		r.Post("/api/admin/clubs", h.handleCreateClub)
		r.Delete("/api/admin/clubs/{id}", h.handleDeleteClub)

		// Gymnasts
		r.Get("/api/admin/gymnasts", h.handleListGymnasts)
		r.Post("/api/admin/gymnasts", h.handleCreateGymnast)
		r.Get("/api/admin/gymnasts/{id}", h.handleGetGymnast)
		r.Put("/api/admin/gymnasts/{id}", h.handleUpdateGymnast)
		r.Delete("/api/admin/gymnasts/{id}", h.handleDeleteGymnast)

		// Entries
		r.Get("/api/admin/entries", h.handleListEntries)
		r.Post("/api/admin/entries", h.handleCreateEntry)
		r.Post("/api/admin/entries/bulk", h.handleBulkAddEntries)
		r.Delete("/api/admin/entries/{id}", h.handleDeleteEntry)

		// Competitions
		r.Post("/api/admin/competitions", h.handleCreateCompetition)
		r.Put("/api/admin/competitions/{id}", h.handleUpdateCompetition)
		r.Delete("/api/admin/competitions/{id}", h.handleDeleteCompetition)
		r.Post("/api/admin/competitions/{id}/start", h.handleStartCompetition)
		r.Post("/api/admin/competitions/{id}/end", h.handleEndCompetition)
		r.Get("/api/admin/competitions/{id}/export.xlsx", h.handleExportCompetition)

		// Scores
		r.Delete("/api/admin/scores/{id}", h.handleDeleteScore)

		// Users and athlete applications
		r.Get("/api/admin/users", h.handleListUsers)
		r.Put("/api/admin/users/{id}/role", h.handleSetUserRole)
		r.Get("/api/admin/applications", h.handleListApplications)
		r.Post("/api/admin/applications/{id}/approve", h.handleApproveApplication)
		r.Post("/api/admin/applications/{id}/reject", h.handleRejectApplication)

		// Exports
		r.Get("/api/admin/results/export.xlsx", h.handleExportResults)
		r.Get("/api/admin/live-qr", h.handleLiveQR)
	})

	return r
}
