package services

import (
	"context"
	stderrors "errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// AllAroundApparatus is the apparatus selector value for the all-around board
const AllAroundApparatus = "all_around"

// LeaderboardServiceRepository defines the repository methods needed by LeaderboardService
type LeaderboardServiceRepository interface {
	repository.LeaderboardRepository
	repository.CompetitionRepository
	repository.GymnastRepository
	ListApparatus(ctx context.Context) ([]models.Apparatus, error)
	CountApparatus(ctx context.Context) (int, error)
}

// LeaderboardService derives rankings and progress from recorded scores
type LeaderboardService struct {
	log  logger.Logger
	repo LeaderboardServiceRepository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(log logger.Logger, repo LeaderboardServiceRepository) *LeaderboardService {
	return &LeaderboardService{log: log, repo: repo}
}

// LiveBoard is everything the spectator page shows for the live competition
type LiveBoard struct {
	NoLiveCompetition bool                  `json:"no_live_competition"`
	Competition       *models.Competition   `json:"competition,omitempty"`
	Levels            []models.Level        `json:"levels"`
	Apparatus         []models.Apparatus    `json:"apparatus"`
	SelectedLevel     models.Level          `json:"selected_level,omitempty"`
	SelectedApparatus int                   `json:"selected_apparatus,omitempty"`
	AllAround         []models.AllAroundRow `json:"all_around,omitempty"`
	ApparatusBoard    []models.ApparatusRow `json:"apparatus_board,omitempty"`
	Progress          *models.Progress      `json:"progress,omitempty"`
}

// assignRanks sorts rows by total descending then gymnast ID and gives
// tied totals the same rank, skipping the ranks they occupy (1, 1, 3).
// Totals are compared at score precision so float noise never splits a tie.
func assignRanks[T any](rows []T, total func(*T) float64, gymnast func(*T) int, setRank func(*T, int)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := RoundTo(total(&rows[i]), ScorePrecision), RoundTo(total(&rows[j]), ScorePrecision)
		if ti != tj {
			return ti > tj
		}
		return gymnast(&rows[i]) < gymnast(&rows[j])
	})

	rank := 0
	var prev float64
	for i := range rows {
		t := RoundTo(total(&rows[i]), ScorePrecision)
		if i == 0 || t != prev {
			rank = i + 1
		}
		prev = t
		setRank(&rows[i], rank)
	}
}

// RankAllAround orders and ranks all-around rows in place
func RankAllAround(rows []models.AllAroundRow) {
	assignRanks(rows,
		func(r *models.AllAroundRow) float64 { return r.Total },
		func(r *models.AllAroundRow) int { return r.GymnastID },
		func(r *models.AllAroundRow, rank int) { r.Rank = rank })
}

// RankApparatus orders and ranks apparatus rows in place
func RankApparatus(rows []models.ApparatusRow) {
	assignRanks(rows,
		func(r *models.ApparatusRow) float64 { return r.Total },
		func(r *models.ApparatusRow) int { return r.GymnastID },
		func(r *models.ApparatusRow, rank int) { r.Rank = rank })
}

// AllAround returns the ranked all-around standings of a level.
// Gymnasts entered without any score are not listed.
func (s *LeaderboardService) AllAround(ctx context.Context, competitionID int, level models.Level) ([]models.AllAroundRow, error) {
	rows, err := s.repo.AllAroundLeaderboard(ctx, competitionID, level)
	if err != nil {
		return nil, internalError(err)
	}
	for i := range rows {
		r := &rows[i]
		r.Total = RoundTo(r.Total, ScorePrecision)
		r.EScore = RoundTo(r.EScore, ScorePrecision)
		r.DScore = RoundTo(r.DScore, ScorePrecision)
		r.Penalty = RoundTo(r.Penalty, ScorePrecision)
	}
	RankAllAround(rows)
	return rows, nil
}

// Apparatus returns the ranked standings of a level on one apparatus
func (s *LeaderboardService) Apparatus(ctx context.Context, competitionID int, level models.Level, apparatusID int) ([]models.ApparatusRow, error) {
	rows, err := s.repo.ApparatusLeaderboard(ctx, competitionID, level, apparatusID)
	if err != nil {
		return nil, internalError(err)
	}
	for i := range rows {
		rows[i].Total = RoundTo(rows[i].Total, ScorePrecision)
	}
	RankApparatus(rows)
	return rows, nil
}

// Progress reports how far scoring has got for every entry in a competition
func (s *LeaderboardService) Progress(ctx context.Context, competitionID int) (*models.Progress, error) {
	if _, err := s.repo.GetCompetition(ctx, competitionID); err != nil {
		return nil, lookupError(err, "competition", competitionID)
	}
	return s.progress(ctx, competitionID)
}

func (s *LeaderboardService) progress(ctx context.Context, competitionID int) (*models.Progress, error) {
	entries, err := s.repo.EntryScoreCounts(ctx, competitionID)
	if err != nil {
		return nil, internalError(err)
	}
	catalog, err := s.repo.CountApparatus(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return BuildProgress(competitionID, entries, catalog), nil
}

// BuildProgress fills in completion figures from per-entry scored counts
func BuildProgress(competitionID int, entries []models.EntryProgress, catalogSize int) *models.Progress {
	p := &models.Progress{
		CompetitionID: competitionID,
		Entries:       entries,
		TotalGymnasts: len(entries),
	}
	if p.Entries == nil {
		p.Entries = []models.EntryProgress{}
	}
	for i := range p.Entries {
		e := &p.Entries[i]
		e.TotalCount = catalogSize
		e.IsComplete = catalogSize > 0 && e.ScoredCount >= catalogSize
		e.Percentage = percentage(e.ScoredCount, catalogSize)
		if e.IsComplete {
			p.FullyScored++
		}
	}
	p.Percentage = percentage(p.FullyScored, p.TotalGymnasts)
	p.IsComplete = p.TotalGymnasts > 0 && p.FullyScored == p.TotalGymnasts
	return p
}

// percentage is part/whole as a percentage to one decimal, 0 when whole is 0
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return RoundTo(float64(part)*100/float64(whole), 1)
}

// LiveBoard assembles the spectator view. An empty level shows the level
// picker only; apparatusID 0 selects the all-around board.
func (s *LeaderboardService) LiveBoard(ctx context.Context, level models.Level, apparatusID int) (*LiveBoard, error) {
	comp, err := s.repo.GetLiveCompetition(ctx)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return &LiveBoard{NoLiveCompetition: true}, nil
		}
		return nil, internalError(err)
	}

	board := &LiveBoard{
		Competition:       comp,
		SelectedLevel:     level,
		SelectedApparatus: apparatusID,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		levels, err := s.repo.LevelsInCompetition(gctx, comp.ID)
		if err != nil {
			return err
		}
		models.SortLevels(levels)
		board.Levels = levels
		return nil
	})
	g.Go(func() error {
		apparatus, err := s.repo.ListApparatus(gctx)
		board.Apparatus = apparatus
		return err
	})
	g.Go(func() error {
		progress, err := s.progress(gctx, comp.ID)
		board.Progress = progress
		return err
	})
	if level != "" {
		g.Go(func() error {
			var err error
			if apparatusID > 0 {
				board.ApparatusBoard, err = s.Apparatus(gctx, comp.ID, level, apparatusID)
			} else {
				board.AllAround, err = s.AllAround(gctx, comp.ID, level)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, internalError(err)
	}

	s.log.Debug("Live board built", "competition_id", comp.ID, "level", level, "apparatus_id", apparatusID)
	return board, nil
}

// GymnastProfile summarises a gymnast's best marks and competition history
func (s *LeaderboardService) GymnastProfile(ctx context.Context, gymnastID int) (*models.GymnastProfile, error) {
	gymnast, err := s.repo.GetGymnast(ctx, gymnastID)
	if err != nil {
		return nil, lookupError(err, "gymnast", gymnastID)
	}

	profile := &models.GymnastProfile{Gymnast: *gymnast}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		best, err := s.repo.GymnastApparatusBest(gctx, gymnastID)
		profile.ApparatusBest = best
		return err
	})
	g.Go(func() error {
		history, err := s.repo.GymnastHistory(gctx, gymnastID)
		profile.History = history
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internalError(err)
	}

	var best float64
	for _, b := range profile.ApparatusBest {
		best += b.Best
	}
	profile.BestAllAround = RoundTo(best, ScorePrecision)
	for i := range profile.History {
		profile.History[i].Total = RoundTo(profile.History[i].Total, ScorePrecision)
	}
	return profile, nil
}
