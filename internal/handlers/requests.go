package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abrezinsky/gymscore/internal/services"
)

// CredentialsRequest is the body of register and login requests
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ClubRequest represents a request to create a club
type ClubRequest struct {
	Name string `json:"name"`
}

// EntryRequest enters one gymnast into a competition
type EntryRequest struct {
	CompetitionID int `json:"competition_id"`
	GymnastID     int `json:"gymnast_id"`
}

// BulkEntriesRequest enters several gymnasts into a competition at once
type BulkEntriesRequest struct {
	CompetitionID int   `json:"competition_id"`
	GymnastIDs    []int `json:"gymnast_ids"`
}

// RoleRequest changes a user's role
type RoleRequest struct {
	Role string `json:"role"`
}

// ScoreRequest is a judge panel's submission for one routine. Execution
// marks may be numbers or numeric strings; null and blank strings are
// judge boxes the panel left empty and are dropped.
type ScoreRequest struct {
	EntryID         int               `json:"entry_id"`
	ApparatusID     int               `json:"apparatus_id"`
	DScore          *float64          `json:"d_score"`
	Penalty         *float64          `json:"penalty"`
	ExecutionScores []json.RawMessage `json:"execution_scores"`
}

// toInput validates presence and converts to the service input
func (req ScoreRequest) toInput() (services.SubmitScoreInput, error) {
	in := services.SubmitScoreInput{
		EntryID:     req.EntryID,
		ApparatusID: req.ApparatusID,
	}
	if req.EntryID <= 0 {
		return in, ValidationError("entry_id", "entry_id is required")
	}
	if req.ApparatusID <= 0 {
		return in, ValidationError("apparatus_id", "apparatus_id is required")
	}
	if req.DScore == nil {
		return in, ValidationError("d_score", "d_score is required")
	}
	in.DScore = *req.DScore
	if req.Penalty != nil {
		in.Penalty = *req.Penalty
	}
	for i, raw := range req.ExecutionScores {
		v, blank, err := parseMark(raw)
		if err != nil {
			field := fmt.Sprintf("execution_scores[%d]", i)
			return in, ValidationError(field, field+" must be a number")
		}
		if blank {
			continue
		}
		in.ExecutionScores = append(in.ExecutionScores, v)
		in.ExecutionPositions = append(in.ExecutionPositions, i)
	}
	return in, nil
}

// parseMark reads one execution mark from a panel submission
func parseMark(raw json.RawMessage) (float64, bool, error) {
	if len(raw) == 0 {
		return 0, true, nil
	}
	var mark interface{}
	if err := json.Unmarshal(raw, &mark); err != nil {
		return 0, false, err
	}
	switch m := mark.(type) {
	case nil:
		return 0, true, nil
	case float64:
		return m, false, nil
	case string:
		text := strings.TrimSpace(m)
		if text == "" {
			return 0, true, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		return v, false, err
	default:
		return 0, false, fmt.Errorf("unsupported mark %s", raw)
	}
}
