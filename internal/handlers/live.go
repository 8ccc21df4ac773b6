package handlers

import (
	"net/http"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/models"
)

// parseLevel reads an optional level query parameter
func parseLevel(r *http.Request) (models.Level, error) {
	v := r.URL.Query().Get("level")
	if v == "" {
		return "", nil
	}
	level, ok := models.ParseLevel(v)
	if !ok {
		return "", ValidationError("level", "Unknown level "+v)
	}
	return level, nil
}

// handleLiveBoard returns the spectator view of the live competition
func (h *Handlers) handleLiveBoard(w http.ResponseWriter, r *http.Request) {
	level, err := parseLevel(r)
	if err != nil {
		respondError(w, err)
		return
	}
	apparatusID, err := queryInt(r, "apparatus")
	if err != nil {
		respondError(w, err)
		return
	}

	board, err := h.Leaderboard.LiveBoard(r.Context(), level, apparatusID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, board)
}

// handleCompetitionLeaderboard returns the all-around or apparatus board of
// one level in any competition
func (h *Handlers) handleCompetitionLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	level, err := parseLevel(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if level == "" {
		respondError(w, ValidationError("level", "level is required"))
		return
	}
	apparatusID, err := queryInt(r, "apparatus")
	if err != nil {
		respondError(w, err)
		return
	}
	if _, err := h.Competition.Get(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	resp := LeaderboardResponse{CompetitionID: id, Level: level, ApparatusID: apparatusID}
	if apparatusID > 0 {
		resp.Apparatus, err = h.Leaderboard.Apparatus(r.Context(), id, level, apparatusID)
		if resp.Apparatus == nil {
			resp.Apparatus = []models.ApparatusRow{}
		}
	} else {
		resp.AllAround, err = h.Leaderboard.AllAround(r.Context(), id, level)
		if resp.AllAround == nil {
			resp.AllAround = []models.AllAroundRow{}
		}
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

func (h *Handlers) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	progress, err := h.Leaderboard.Progress(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, progress)
}

// handleScoringDashboard lists the live competition's entries for judges
func (h *Handlers) handleScoringDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comp, err := h.Competition.Live(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	entries, err := h.Roster.ListEntries(ctx, &comp.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	apparatus, err := h.Roster.Apparatus(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	progress, err := h.Leaderboard.Progress(ctx, comp.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	if entries == nil {
		entries = []models.EntryDetail{}
	}
	respondOK(w, ScoringDashboardResponse{
		Competition: comp,
		Entries:     entries,
		Apparatus:   apparatus,
		Progress:    progress,
	})
}

func (h *Handlers) handleGymnastProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	profile, err := h.Leaderboard.GymnastProfile(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, profile)
}

func (h *Handlers) principal(r *http.Request) auth.Principal {
	return auth.FromContext(r.Context())
}
