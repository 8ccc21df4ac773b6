package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// ScorePrecision is the number of decimals kept for averaged execution scores
const ScorePrecision = 3

// maxScoreAttempts bounds retries when a concurrent submission creates the same score row
const maxScoreAttempts = 3

// ScoringServiceRepository defines the repository methods needed by ScoringService
type ScoringServiceRepository interface {
	repository.EntryRepository
	repository.ScoreRepository
	repository.CompetitionRepository
	repository.Transactor
}

// ScoringService records apparatus scores for the live competition
type ScoringService struct {
	log         logger.Logger
	repo        ScoringServiceRepository
	broadcaster Broadcaster
}

// NewScoringService creates a new ScoringService
func NewScoringService(log logger.Logger, repo ScoringServiceRepository) *ScoringService {
	return &ScoringService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for pushing submitted scores to clients
func (s *ScoringService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SubmitScoreInput is one judging panel's submission for a routine.
// ExecutionScores holds every judge's E mark; blanks are dropped by the caller.
type SubmitScoreInput struct {
	EntryID         int       `json:"entry_id"`
	ApparatusID     int       `json:"apparatus_id"`
	DScore          float64   `json:"d_score"`
	Penalty         float64   `json:"penalty"`
	ExecutionScores []float64 `json:"execution_scores"`
	// ExecutionPositions holds each mark's index in the caller's original
	// list, before blanks were dropped. Nil means the marks were not filtered.
	ExecutionPositions []int `json:"-"`
}

// markField names the request field an execution mark came from
func (in SubmitScoreInput) markField(i int) string {
	if i < len(in.ExecutionPositions) {
		i = in.ExecutionPositions[i]
	}
	return fmt.Sprintf("execution_scores[%d]", i)
}

// SubmitResult is the finalized score plus the entry's progress
type SubmitResult struct {
	Score       models.Score `json:"score"`
	ScoredCount int          `json:"scored_count"`
	TotalCount  int          `json:"total_count"`
	Complete    bool         `json:"complete"`
}

// RoundTo rounds x to the given number of decimal places
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// FinalizeScore derives the execution score and total of a routine.
// A single execution mark is used as-is and produces no judge scores.
// Two or more marks each become a judge score (rounded to 3 places) and
// the execution score is their mean, rounded to 3 places.
func FinalizeScore(dScore, penalty float64, execution []float64) (models.Score, []models.JudgeScore) {
	score := models.Score{DScore: dScore, Penalty: penalty}

	var judges []models.JudgeScore
	switch len(execution) {
	case 0:
	case 1:
		score.EScore = execution[0]
	default:
		judges = make([]models.JudgeScore, 0, len(execution))
		var sum float64
		for i, v := range execution {
			v = RoundTo(v, ScorePrecision)
			judges = append(judges, models.JudgeScore{JudgeNumber: i + 1, EScore: v})
			sum += v
		}
		score.EScore = RoundTo(sum/float64(len(execution)), ScorePrecision)
	}

	score.Total = score.EScore + score.DScore - score.Penalty
	score.JudgeScores = judges
	return score, judges
}

func validateSubmission(in SubmitScoreInput) error {
	if err := checkMark("d_score", in.DScore); err != nil {
		return err
	}
	if err := checkMark("penalty", in.Penalty); err != nil {
		return err
	}
	if len(in.ExecutionScores) == 0 {
		return errors.FieldValidation("execution_scores", "at least one execution score is required")
	}
	for i, v := range in.ExecutionScores {
		if err := checkMark(in.markField(i), v); err != nil {
			return err
		}
	}
	return nil
}

// SubmitScore records a full resubmission for one routine. Prior judge
// scores of the routine are replaced, never accumulated.
func (s *ScoringService) SubmitScore(ctx context.Context, p auth.Principal, in SubmitScoreInput) (*SubmitResult, error) {
	if err := auth.Require(p, models.RoleAdmin, models.RoleJudge); err != nil {
		return nil, err
	}
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	final, judges := FinalizeScore(in.DScore, in.Penalty, in.ExecutionScores)

	var (
		result *SubmitResult
		entry  *models.EntryDetail
		err    error
	)
	for attempt := 1; attempt <= maxScoreAttempts; attempt++ {
		err = s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
			var txErr error
			result, entry, txErr = s.writeScore(ctx, tx, in, final, judges)
			return txErr
		})
		if err == nil || !stderrors.Is(err, repository.ErrDuplicate) {
			break
		}
		s.log.Warn("Score row created concurrently, retrying",
			"entry_id", in.EntryID, "apparatus_id", in.ApparatusID, "attempt", attempt)
	}
	if err != nil {
		return nil, internalError(err)
	}

	s.log.Info("Score submitted",
		"entry_id", in.EntryID,
		"apparatus_id", in.ApparatusID,
		"total", result.Score.Total,
		"judges", len(judges),
		"user", p.Username)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastScoreSubmitted(models.ScoreSubmittedPayload{
			CompetitionID: entry.CompetitionID,
			EntryID:       in.EntryID,
			ApparatusID:   in.ApparatusID,
			Total:         result.Score.Total,
			Level:         entry.Level,
		})
	}
	return result, nil
}

// writeScore runs inside the submission transaction
func (s *ScoringService) writeScore(ctx context.Context, tx repository.FullRepository, in SubmitScoreInput,
	final models.Score, judges []models.JudgeScore) (*SubmitResult, *models.EntryDetail, error) {

	entry, err := tx.GetEntryDetail(ctx, in.EntryID)
	if err != nil {
		return nil, nil, lookupError(err, "entry", in.EntryID)
	}
	if _, err := tx.GetApparatus(ctx, in.ApparatusID); err != nil {
		return nil, nil, lookupError(err, "apparatus", in.ApparatusID)
	}
	comp, err := tx.GetCompetition(ctx, entry.CompetitionID)
	if err != nil {
		return nil, nil, lookupError(err, "competition", entry.CompetitionID)
	}
	if comp.Status != models.StatusLive {
		return nil, nil, ErrCompetitionNotLive
	}

	id, err := tx.EnsureScore(ctx, in.EntryID, in.ApparatusID)
	if err != nil {
		return nil, nil, err
	}
	final.ID = id
	final.EntryID = in.EntryID
	final.ApparatusID = in.ApparatusID
	if err := tx.UpdateScoreValues(ctx, &final); err != nil {
		return nil, nil, err
	}
	if err := tx.ReplaceJudgeScores(ctx, id, judges); err != nil {
		return nil, nil, err
	}

	saved, err := tx.GetScore(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	scored, err := tx.CountScoredApparatus(ctx, in.EntryID)
	if err != nil {
		return nil, nil, err
	}
	total, err := tx.CountApparatus(ctx)
	if err != nil {
		return nil, nil, err
	}

	return &SubmitResult{
		Score:       *saved,
		ScoredCount: scored,
		TotalCount:  total,
		Complete:    total > 0 && scored >= total,
	}, entry, nil
}

// DeleteScore removes a score and its judge scores atomically
func (s *ScoringService) DeleteScore(ctx context.Context, p auth.Principal, scoreID int) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		return tx.DeleteScore(ctx, scoreID)
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("score %d not found", scoreID)
		}
		return consistencyError("score", err)
	}
	s.log.Info("Score deleted", "score_id", scoreID, "user", p.Username)
	return nil
}

// GetScore returns the score of one routine with its judge scores
func (s *ScoringService) GetScore(ctx context.Context, entryID, apparatusID int) (*models.Score, error) {
	score, err := s.repo.GetScoreFor(ctx, entryID, apparatusID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("no score for entry %d on apparatus %d", entryID, apparatusID)
		}
		return nil, internalError(err)
	}
	return score, nil
}
