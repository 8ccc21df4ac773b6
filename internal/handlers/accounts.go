package handlers

import (
	"net/http"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/services"
)

func principalOf(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// startSession issues a session cookie for u
func (h *Handlers) startSession(w http.ResponseWriter, u *models.User) error {
	token, err := h.Sessions.Issue(principalOf(u))
	if err != nil {
		return InternalError(err)
	}
	auth.SetSessionCookie(w, token)
	return nil
}

// handleRegister creates an account and logs it in
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.startSession(w, user); err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, user)
}

// handleLogin checks credentials and sets the session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.startSession(w, user); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, user)
}

// handleLogout revokes the session and clears the cookie
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Sessions.Revoke(cookie.Value)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	resp := MeResponse{
		Authenticated: p.Authenticated(),
		CanScore:      p.CanScore(),
		IsAdmin:       p.IsAdmin(),
	}
	if p.Authenticated() {
		resp.User = &p
	}
	respondOK(w, resp)
}

// ==================== Athletes ====================

func (h *Handlers) handleApply(w http.ResponseWriter, r *http.Request) {
	var req services.ApplicationInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	app, err := h.Users.Apply(r.Context(), h.principal(r), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, app)
}

// handleUpdateProfile edits the bio of the caller's own gymnast record
func (h *Handlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.ProfileInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	g, err := h.Users.UpdateProfile(r.Context(), h.principal(r), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, g)
}

// ==================== Admin: users ====================

func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context(), h.principal(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondOK(w, users)
}

// handleSetUserRole changes a role. It takes effect at the user's next login.
func (h *Handlers) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req RoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.Users.SetRole(r.Context(), h.principal(r), id, models.Role(req.Role))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, user)
}

func (h *Handlers) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Users.ListPending(r.Context(), h.principal(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if apps == nil {
		apps = []models.AthleteApplication{}
	}
	respondOK(w, apps)
}

func (h *Handlers) handleApproveApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	g, err := h.Users.Approve(r.Context(), h.principal(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, g)
}

func (h *Handlers) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Users.Reject(r.Context(), h.principal(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Application rejected")
}
