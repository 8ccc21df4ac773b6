package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// RosterServiceRepository defines the repository methods needed by RosterService
type RosterServiceRepository interface {
	repository.ClubRepository
	repository.GymnastRepository
	repository.EntryRepository
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	ListApparatus(ctx context.Context) ([]models.Apparatus, error)
	repository.Transactor
}

// RosterService manages clubs, gymnasts and competition entries
type RosterService struct {
	log  logger.Logger
	repo RosterServiceRepository
}

// NewRosterService creates a new RosterService
func NewRosterService(log logger.Logger, repo RosterServiceRepository) *RosterService {
	return &RosterService{log: log, repo: repo}
}

// GymnastInput holds the editable fields of a gymnast
type GymnastInput struct {
	Name         string `json:"name"`
	Level        string `json:"level"`
	ClubID       int    `json:"club_id"`
	Age          *int   `json:"age"`
	Goals        string `json:"goals"`
	Achievements string `json:"achievements"`
	Injuries     string `json:"injuries"`
}

// BulkAddResult reports the outcome of adding many entries at once
type BulkAddResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// ==================== Clubs ====================

// CreateClub adds a club. Names are unique.
func (s *RosterService) CreateClub(ctx context.Context, p auth.Principal, name string) (*models.Club, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := requireText("name", name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	id, err := s.repo.CreateClub(ctx, name)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflictf("club %q already exists", name).WithField("name")
		}
		return nil, internalError(err)
	}
	s.log.Info("Club created", "club_id", id, "name", name)
	return &models.Club{ID: id, Name: name}, nil
}

func (s *RosterService) ListClubs(ctx context.Context) ([]models.Club, error) {
	clubs, err := s.repo.ListClubs(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return clubs, nil
}

// DeleteClub removes a club that no gymnast belongs to
func (s *RosterService) DeleteClub(ctx context.Context, p auth.Principal, id int) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteClub(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrInUse) {
			return ErrClubInUse
		}
		return lookupError(err, "club", id)
	}
	s.log.Info("Club deleted", "club_id", id)
	return nil
}

// ==================== Gymnasts ====================

func (s *RosterService) gymnastFrom(ctx context.Context, in GymnastInput) (*models.Gymnast, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	level, ok := models.ParseLevel(in.Level)
	if !ok {
		return nil, errors.FieldValidation("level", "unknown level "+strings.TrimSpace(in.Level))
	}
	if in.Age != nil && (*in.Age < 1 || *in.Age > 100) {
		return nil, errors.FieldValidation("age", "age must be between 1 and 100")
	}
	if in.ClubID <= 0 {
		return nil, errors.FieldValidation("club_id", "club_id is required")
	}
	if _, err := s.repo.GetClub(ctx, in.ClubID); err != nil {
		return nil, lookupError(err, "club", in.ClubID)
	}

	return &models.Gymnast{
		Name:         strings.TrimSpace(in.Name),
		Level:        level,
		ClubID:       in.ClubID,
		Age:          in.Age,
		Goals:        strings.TrimSpace(in.Goals),
		Achievements: strings.TrimSpace(in.Achievements),
		Injuries:     strings.TrimSpace(in.Injuries),
	}, nil
}

// CreateGymnast adds a gymnast to a club
func (s *RosterService) CreateGymnast(ctx context.Context, p auth.Principal, in GymnastInput) (*models.Gymnast, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	g, err := s.gymnastFrom(ctx, in)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.CreateGymnast(ctx, g)
	if err != nil {
		return nil, internalError(err)
	}
	s.log.Info("Gymnast created", "gymnast_id", id, "name", g.Name, "level", g.Level)
	return s.GetGymnast(ctx, id)
}

// UpdateGymnast replaces a gymnast's editable fields
func (s *RosterService) UpdateGymnast(ctx context.Context, p auth.Principal, id int, in GymnastInput) (*models.Gymnast, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	g, err := s.gymnastFrom(ctx, in)
	if err != nil {
		return nil, err
	}
	g.ID = id
	if err := s.repo.UpdateGymnast(ctx, g); err != nil {
		return nil, lookupError(err, "gymnast", id)
	}
	s.log.Info("Gymnast updated", "gymnast_id", id)
	return s.GetGymnast(ctx, id)
}

func (s *RosterService) GetGymnast(ctx context.Context, id int) (*models.Gymnast, error) {
	g, err := s.repo.GetGymnast(ctx, id)
	if err != nil {
		return nil, lookupError(err, "gymnast", id)
	}
	return g, nil
}

// ListGymnasts returns every gymnast, newest first
func (s *RosterService) ListGymnasts(ctx context.Context) ([]models.Gymnast, error) {
	gymnasts, err := s.repo.ListGymnasts(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return gymnasts, nil
}

// DeleteGymnast removes a gymnast together with all of their entries,
// scores and judge scores in one transaction
func (s *RosterService) DeleteGymnast(ctx context.Context, p auth.Principal, id int) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}

	var entries int
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		if _, err := tx.GetGymnast(ctx, id); err != nil {
			return lookupError(err, "gymnast", id)
		}
		var err error
		if entries, err = deleteEntriesWhere(ctx, tx, repository.EntryFilter{GymnastID: &id}); err != nil {
			return err
		}
		return tx.DeleteGymnast(ctx, id)
	})
	if err != nil {
		err = consistencyError("gymnast", err)
		if errors.Is(err, errors.ErrConsistency) {
			s.log.Error("Gymnast delete rolled back", "gymnast_id", id, "error", err)
		}
		return err
	}

	s.log.Info("Gymnast deleted", "gymnast_id", id, "entries", entries, "user", p.Username)
	return nil
}

// ==================== Entries ====================

// CreateEntry enters a gymnast in a competition, at most once
func (s *RosterService) CreateEntry(ctx context.Context, p auth.Principal, competitionID, gymnastID int) (*models.EntryDetail, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCompetition(ctx, competitionID); err != nil {
		return nil, lookupError(err, "competition", competitionID)
	}
	if _, err := s.repo.GetGymnast(ctx, gymnastID); err != nil {
		return nil, lookupError(err, "gymnast", gymnastID)
	}

	id, err := s.repo.CreateEntry(ctx, competitionID, gymnastID)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, internalError(err)
	}
	s.log.Info("Entry created", "entry_id", id, "competition_id", competitionID, "gymnast_id", gymnastID)

	entry, err := s.repo.GetEntryDetail(ctx, id)
	if err != nil {
		return nil, lookupError(err, "entry", id)
	}
	return entry, nil
}

// BulkAddEntries enters many gymnasts at once. Gymnasts already entered
// (or listed twice) are counted as duplicates and skipped; an unknown
// gymnast aborts the whole batch.
func (s *RosterService) BulkAddEntries(ctx context.Context, p auth.Principal, competitionID int, gymnastIDs []int) (*BulkAddResult, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if len(gymnastIDs) == 0 {
		return nil, errors.FieldValidation("gymnast_ids", "select at least one gymnast")
	}

	result := &BulkAddResult{}
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		if _, err := tx.GetCompetition(ctx, competitionID); err != nil {
			return lookupError(err, "competition", competitionID)
		}
		existing, err := tx.ListEntries(ctx, &competitionID)
		if err != nil {
			return err
		}
		entered := make(map[int]bool, len(existing)+len(gymnastIDs))
		for _, e := range existing {
			entered[e.GymnastID] = true
		}

		for _, gid := range gymnastIDs {
			if entered[gid] {
				result.Duplicates++
				continue
			}
			if _, err := tx.GetGymnast(ctx, gid); err != nil {
				return lookupError(err, "gymnast", gid)
			}
			if _, err := tx.CreateEntry(ctx, competitionID, gid); err != nil {
				return err
			}
			entered[gid] = true
			result.Added++
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, internalError(err)
	}

	s.log.Info("Entries added", "competition_id", competitionID, "added", result.Added, "duplicates", result.Duplicates)
	return result, nil
}

// ListEntries returns entries joined with gymnast, club and competition,
// optionally limited to one competition
func (s *RosterService) ListEntries(ctx context.Context, competitionID *int) ([]models.EntryDetail, error) {
	entries, err := s.repo.ListEntries(ctx, competitionID)
	if err != nil {
		return nil, internalError(err)
	}
	return entries, nil
}

// DeleteEntry removes an entry with its scores and judge scores atomically
func (s *RosterService) DeleteEntry(ctx context.Context, p auth.Principal, id int) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		if _, err := tx.GetEntry(ctx, id); err != nil {
			return lookupError(err, "entry", id)
		}
		return deleteEntries(ctx, tx, []int{id})
	})
	if err != nil {
		err = consistencyError("entry", err)
		if errors.Is(err, errors.ErrConsistency) {
			s.log.Error("Entry delete rolled back", "entry_id", id, "error", err)
		}
		return err
	}
	s.log.Info("Entry deleted", "entry_id", id, "user", p.Username)
	return nil
}

// ==================== Catalogs ====================

// Levels returns the levels gymnasts are registered at, in canonical order
func (s *RosterService) Levels(ctx context.Context) ([]models.Level, error) {
	levels, err := s.repo.LevelsInUse(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	models.SortLevels(levels)
	return levels, nil
}

// Apparatus returns the apparatus catalog in display order
func (s *RosterService) Apparatus(ctx context.Context) ([]models.Apparatus, error) {
	apparatus, err := s.repo.ListApparatus(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return apparatus, nil
}
