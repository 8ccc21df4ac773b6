package handlers_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/handlers"
)

func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *handlers.APIError
		status int
		code   string
	}{
		{"BadRequest", handlers.BadRequest("bad"), http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"Validation", handlers.ValidationError("name", "bad"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"Unauthorized", handlers.Unauthorized("login"), http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{"Forbidden", handlers.Forbidden("no"), http.StatusForbidden, handlers.ErrCodeForbidden},
		{"NotFound", handlers.NotFound("gone"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"Conflict", handlers.Conflict("taken"), http.StatusConflict, handlers.ErrCodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.Status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, tt.err.Code)
			}
		})
	}
}

func TestInternalError_HidesDetail(t *testing.T) {
	err := handlers.InternalError(fmt.Errorf("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		field   string
		message string
	}{
		{"not found", errors.NotFound("gymnast 4 not found"), http.StatusNotFound, handlers.ErrCodeNotFound, "", "gymnast 4 not found"},
		{"validation with field", errors.FieldValidation("d_score", "d_score must be between 0 and 10"), http.StatusBadRequest, handlers.ErrCodeValidation, "d_score", "d_score must be between 0 and 10"},
		{"invalid input", errors.InvalidInput("bad"), http.StatusBadRequest, handlers.ErrCodeValidation, "", "bad"},
		{"conflict", errors.Conflict("already entered").WithField("gymnast_id"), http.StatusConflict, handlers.ErrCodeConflict, "gymnast_id", "already entered"},
		{"unauthorized", errors.Unauthorized("login required"), http.StatusUnauthorized, handlers.ErrCodeUnauthorized, "", "login required"},
		{"forbidden", errors.Forbidden("insufficient permissions"), http.StatusForbidden, handlers.ErrCodeForbidden, "", "insufficient permissions"},
		{"consistency", errors.Consistency("delete aborted", stderrors.New("disk I/O")), http.StatusInternalServerError, handlers.ErrCodeInternalServer, "", "Internal server error"},
		{"internal", errors.Internal(stderrors.New("boom")), http.StatusInternalServerError, handlers.ErrCodeInternalServer, "", "Internal server error"},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, handlers.ErrCodeInternalServer, "", "Internal server error"},
		{"wrapped", fmt.Errorf("ctx: %w", errors.NotFound("entry 9 not found")), http.StatusNotFound, handlers.ErrCodeNotFound, "", "entry 9 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handlers.ToAPIError(tt.err)
			if got.Status != tt.status || got.Code != tt.code || got.Field != tt.field || got.Message != tt.message {
				t.Errorf("got %+v, want status %d code %s field %q message %q", got, tt.status, tt.code, tt.field, tt.message)
			}
		})
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodPost, "/api/admin/clubs", "", setup.adminCookie)
	expectStatus(t, rec, http.StatusBadRequest)

	if !strings.Contains(strings.ToLower(rec.Body.String()), "empty") {
		t.Errorf("expected error to mention 'empty', got %q", rec.Body.String())
	}
}

func TestDecodeJSON_InvalidJSON(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodPost, "/api/admin/clubs", "{invalid}", setup.adminCookie)
	expectStatus(t, rec, http.StatusBadRequest)

	if e := apiError(t, rec); e.Code != handlers.ErrCodeBadRequest || !strings.Contains(e.Message, "JSON") {
		t.Errorf("unexpected error: %+v", e)
	}
}

func TestParseIntParam_Invalid(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodGet, "/api/competitions/abc", "", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestContentTypeIsJSON(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodGet, "/api/competitions", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected an empty array, got %s", body)
	}
}
