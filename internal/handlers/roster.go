package handlers

import (
	"net/http"

	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/services"
)

// ==================== Clubs ====================

func (h *Handlers) handleListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.Roster.ListClubs(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if clubs == nil {
		clubs = []models.Club{}
	}
	respondOK(w, clubs)
}

func (h *Handlers) handleCreateClub(w http.ResponseWriter, r *http.Request) {
	var req ClubRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	club, err := h.Roster.CreateClub(r.Context(), h.principal(r), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, club)
}

func (h *Handlers) handleDeleteClub(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Roster.DeleteClub(r.Context(), h.principal(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Gymnasts ====================

func (h *Handlers) handleListGymnasts(w http.ResponseWriter, r *http.Request) {
	gymnasts, err := h.Roster.ListGymnasts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if gymnasts == nil {
		gymnasts = []models.Gymnast{}
	}
	respondOK(w, gymnasts)
}

func (h *Handlers) handleGetGymnast(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	g, err := h.Roster.GetGymnast(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, g)
}

func (h *Handlers) handleCreateGymnast(w http.ResponseWriter, r *http.Request) {
	var req services.GymnastInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	g, err := h.Roster.CreateGymnast(r.Context(), h.principal(r), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, g)
}

func (h *Handlers) handleUpdateGymnast(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req services.GymnastInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	g, err := h.Roster.UpdateGymnast(r.Context(), h.principal(r), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, g)
}

// handleDeleteGymnast removes a gymnast along with every entry and score
func (h *Handlers) handleDeleteGymnast(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Roster.DeleteGymnast(r.Context(), h.principal(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Entries ====================

// handleListEntries lists entries, optionally for ?competition_id= only
func (h *Handlers) handleListEntries(w http.ResponseWriter, r *http.Request) {
	compID, err := queryInt(r, "competition_id")
	if err != nil {
		respondError(w, err)
		return
	}
	var filter *int
	if compID > 0 {
		filter = &compID
	}
	entries, err := h.Roster.ListEntries(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if entries == nil {
		entries = []models.EntryDetail{}
	}
	respondOK(w, entries)
}

func (h *Handlers) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	entry, err := h.Roster.CreateEntry(r.Context(), h.principal(r), req.CompetitionID, req.GymnastID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, entry)
}

func (h *Handlers) handleBulkAddEntries(w http.ResponseWriter, r *http.Request) {
	var req BulkEntriesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	result, err := h.Roster.BulkAddEntries(r.Context(), h.principal(r), req.CompetitionID, req.GymnastIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Roster.DeleteEntry(r.Context(), h.principal(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Catalogs ====================

func (h *Handlers) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Roster.Levels(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if levels == nil {
		levels = []models.Level{}
	}
	respondOK(w, levels)
}

func (h *Handlers) handleListApparatus(w http.ResponseWriter, r *http.Request) {
	apparatus, err := h.Roster.Apparatus(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, apparatus)
}
