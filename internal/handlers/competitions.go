package handlers

import (
	"fmt"
	"net/http"

	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	comps, err := h.Competition.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if comps == nil {
		comps = []models.Competition{}
	}
	respondOK(w, comps)
}

func (h *Handlers) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	comp, err := h.Competition.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, comp)
}

func (h *Handlers) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req services.CompetitionInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	comp, err := h.Competition.Create(r.Context(), h.principal(r), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, comp)
}

func (h *Handlers) handleUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req services.CompetitionInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	comp, err := h.Competition.Update(r.Context(), h.principal(r), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, comp)
}

// handleDeleteCompetition removes a competition with its entries and scores
func (h *Handlers) handleDeleteCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Competition.Delete(r.Context(), h.principal(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleStartCompetition makes a competition live, ending any other live one
func (h *Handlers) handleStartCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	comp, err := h.Competition.Start(r.Context(), h.principal(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, comp)
}

func (h *Handlers) handleEndCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	comp, err := h.Competition.End(r.Context(), h.principal(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, comp)
}

// handleCalendar returns one month of competitions. Missing or out of range
// year/month values fall back to the current month.
func (h *Handlers) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		respondError(w, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		respondError(w, err)
		return
	}
	cal, err := h.Competition.Calendar(r.Context(), year, month)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, cal)
}

func (h *Handlers) handleExportCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := h.Results.CompetitionExportXLSX(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondFile(w, xlsxContentType, fmt.Sprintf("competition-%d.xlsx", id), data)
}
