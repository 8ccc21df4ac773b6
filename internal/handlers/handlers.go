package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// PageData holds the data passed to page templates
type PageData struct {
	Title     string
	Principal auth.Principal
	BaseURL   string
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index *template.Template
	Live  *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Scoring     services.ScoringServicer
	Leaderboard services.LeaderboardServicer
	Competition services.CompetitionServicer
	Roster      services.RosterServicer
	Results     services.ResultsServicer
	Users       services.UserServicer
	Sessions    *auth.Sessions
	Hub         *websocket.Hub
	Log         HTTPLogger

	// BaseURL is the address spectators reach the server on; used for the live QR code
	BaseURL string
	// CORSOrigins lists the origins allowed to call the JSON API
	CORSOrigins []string

	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	scoring services.ScoringServicer,
	leaderboard services.LeaderboardServicer,
	competition services.CompetitionServicer,
	roster services.RosterServicer,
	results services.ResultsServicer,
	users services.UserServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	sessions *auth.Sessions,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Scoring:      scoring,
		Leaderboard:  leaderboard,
		Competition:  competition,
		Roster:       roster,
		Results:      results,
		Users:        users,
		Sessions:     sessions,
		Hub:          hub,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(
	scoring services.ScoringServicer,
	leaderboard services.LeaderboardServicer,
	competition services.CompetitionServicer,
	roster services.RosterServicer,
	results services.ResultsServicer,
	users services.UserServicer,
) *Handlers {
	return &Handlers{
		Scoring:     scoring,
		Leaderboard: leaderboard,
		Competition: competition,
		Roster:      roster,
		Results:     results,
		Users:       users,
		Sessions:    auth.NewSessions("test-secret"),
		Log:         NoopHTTPLogger{},
		BaseURL:     "http://localhost:8081",
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "layout.html", "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.Live, err = template.ParseFS(templatesFS, "layout.html", "live.html"); err != nil {
		return nil, fmt.Errorf("live template: %w", err)
	}

	return t, nil
}
