package handlers

import (
	"net/http"

	"github.com/abrezinsky/gymscore/internal/auth"
)

func (h *Handlers) pageData(r *http.Request, title string) PageData {
	return PageData{
		Title:     title,
		Principal: auth.FromContext(r.Context()),
		BaseURL:   h.BaseURL,
	}
}

// handleIndex renders the home page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.templates.Index.ExecuteTemplate(w, "layout", h.pageData(r, "GymScore"))
}

// handleLivePage renders the spectator board; data arrives over /api/live and /ws
func (h *Handlers) handleLivePage(w http.ResponseWriter, r *http.Request) {
	h.templates.Live.ExecuteTemplate(w, "layout", h.pageData(r, "Live Scores"))
}
