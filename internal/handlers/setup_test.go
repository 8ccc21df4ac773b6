package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/handlers"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/repository"
	"github.com/abrezinsky/gymscore/internal/repository/mock"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/testutil"
)

// testSetup holds common test dependencies
type testSetup struct {
	repo        *repository.Repository
	handlers    *handlers.Handlers
	router      chi.Router
	adminCookie *http.Cookie
	judgeCookie *http.Cookie
	userCookie  *http.Cookie
	log         logger.Logger
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	return newSetup(t, repo, repo)
}

// newTestSetupWithMockRepo wires services through a mock repository so
// tests can inject failures
func newTestSetupWithMockRepo(t *testing.T) (*testSetup, *mock.Repository) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	m := mock.NewRepository(repo)
	return newSetup(t, repo, m), m
}

func newSetup(t *testing.T, repo *repository.Repository, full repository.FullRepository) *testSetup {
	t.Helper()
	log := logger.New()

	leaderboard := services.NewLeaderboardService(log, full)
	h := handlers.NewForTesting(
		services.NewScoringService(log, full),
		leaderboard,
		services.NewCompetitionService(log, full),
		services.NewRosterService(log, full),
		services.NewResultsService(log, full, leaderboard),
		services.NewUserService(log, full),
	)
	h.Log = log

	return &testSetup{
		repo:        repo,
		handlers:    h,
		router:      h.Router(),
		adminCookie: sessionCookie(t, h, auth.Principal{UserID: 9001, Username: "admin", Role: "admin"}),
		judgeCookie: sessionCookie(t, h, auth.Principal{UserID: 9002, Username: "judge", Role: "judge"}),
		userCookie:  sessionCookie(t, h, auth.Principal{UserID: 9003, Username: "viewer", Role: "user"}),
		log:         log,
	}
}

func sessionCookie(t *testing.T, h *handlers.Handlers, p auth.Principal) *http.Cookie {
	t.Helper()
	token, err := h.Sessions.Issue(p)
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

// do sends a request through the router. A nil cookie sends it anonymously.
func (s *testSetup) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// apiError decodes an error body
func apiError(t *testing.T, rec *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()
	var e handlers.APIError
	decode(t, rec, &e)
	return e
}
