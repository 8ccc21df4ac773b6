package handlers

import (
	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/models"
)

// MeResponse describes the caller's session
type MeResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *auth.Principal `json:"user,omitempty"`
	CanScore      bool            `json:"can_score"`
	IsAdmin       bool            `json:"is_admin"`
}

// ScoringDashboardResponse lists what a judge can score right now
type ScoringDashboardResponse struct {
	Competition *models.Competition  `json:"competition"`
	Entries     []models.EntryDetail `json:"entries"`
	Apparatus   []models.Apparatus   `json:"apparatus"`
	Progress    *models.Progress     `json:"progress"`
}

// LeaderboardResponse is one competition board for a level
type LeaderboardResponse struct {
	CompetitionID int                   `json:"competition_id"`
	Level         models.Level          `json:"level"`
	ApparatusID   int                   `json:"apparatus_id,omitempty"`
	AllAround     []models.AllAroundRow `json:"all_around,omitempty"`
	Apparatus     []models.ApparatusRow `json:"apparatus,omitempty"`
}

// ResultsPageResponse wraps a results page with navigation
type ResultsPageResponse struct {
	Items   []models.ResultRow `json:"items"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
	Total   int                `json:"total"`
	All     bool               `json:"all"`
	Pages   int                `json:"pages"`
	HasNext bool               `json:"has_next"`
	HasPrev bool               `json:"has_prev"`
}

func newResultsPageResponse(p models.Page[models.ResultRow]) ResultsPageResponse {
	return ResultsPageResponse{
		Items:   p.Items,
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		All:     p.All,
		Pages:   p.Pages(),
		HasNext: p.HasNext(),
		HasPrev: p.HasPrev(),
	}
}
