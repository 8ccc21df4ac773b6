package handlers

import "net/http"

// handleSubmitScore records a judge panel's marks for one routine
func (h *Handlers) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Scoring.SubmitScore(r.Context(), h.principal(r), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleGetScore returns the current score of a routine, if one exists
func (h *Handlers) handleGetScore(w http.ResponseWriter, r *http.Request) {
	entryID, err := queryInt(r, "entry_id")
	if err != nil {
		respondError(w, err)
		return
	}
	apparatusID, err := queryInt(r, "apparatus_id")
	if err != nil {
		respondError(w, err)
		return
	}
	if entryID <= 0 {
		respondError(w, ValidationError("entry_id", "entry_id is required"))
		return
	}
	if apparatusID <= 0 {
		respondError(w, ValidationError("apparatus_id", "apparatus_id is required"))
		return
	}

	score, err := h.Scoring.GetScore(r.Context(), entryID, apparatusID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, score)
}

func (h *Handlers) handleDeleteScore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Scoring.DeleteScore(r.Context(), h.principal(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}
