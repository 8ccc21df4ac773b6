package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// CompetitionServiceRepository defines the repository methods needed by CompetitionService
type CompetitionServiceRepository interface {
	repository.CompetitionRepository
	GetOrCreateSeason(ctx context.Context, year int) (int, error)
	repository.Transactor
}

// CompetitionService manages competitions and their draft -> live -> ended lifecycle
type CompetitionService struct {
	log         logger.Logger
	repo        CompetitionServiceRepository
	broadcaster Broadcaster
	now         func() time.Time
}

// NewCompetitionService creates a new CompetitionService
func NewCompetitionService(log logger.Logger, repo CompetitionServiceRepository) *CompetitionService {
	return &CompetitionService{log: log, repo: repo, now: time.Now}
}

// SetBroadcaster sets the broadcaster for pushing status changes to clients
func (s *CompetitionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CompetitionInput holds the editable fields of a competition.
// Date is YYYY-MM-DD and may be empty.
type CompetitionInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Date    string `json:"date"`
}

func (s *CompetitionService) build(ctx context.Context, in CompetitionInput) (*models.Competition, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	if err := requireText("address", in.Address); err != nil {
		return nil, err
	}

	c := &models.Competition{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
	}
	year := s.now().Year()
	if d := strings.TrimSpace(in.Date); d != "" {
		date, err := time.Parse(models.DateLayout, d)
		if err != nil {
			return nil, errors.FieldValidation("date", "date must be YYYY-MM-DD")
		}
		c.Date = &date
		year = date.Year()
	}

	seasonID, err := s.repo.GetOrCreateSeason(ctx, year)
	if err != nil {
		return nil, internalError(err)
	}
	c.SeasonID = &seasonID
	return c, nil
}

// Create adds a draft competition
func (s *CompetitionService) Create(ctx context.Context, p auth.Principal, in CompetitionInput) (*models.Competition, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	c, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Status = models.StatusDraft

	id, err := s.repo.CreateCompetition(ctx, c)
	if err != nil {
		return nil, internalError(err)
	}
	c.ID = id

	s.log.Info("Competition created", "competition_id", id, "name", c.Name, "user", p.Username)
	return c, nil
}

// Update replaces the name, address and date of a competition
func (s *CompetitionService) Update(ctx context.Context, p auth.Principal, id int, in CompetitionInput) (*models.Competition, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetCompetition(ctx, id)
	if err != nil {
		return nil, lookupError(err, "competition", id)
	}
	c, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.Status = existing.Status
	c.StartedAt = existing.StartedAt
	c.EndedAt = existing.EndedAt

	if err := s.repo.UpdateCompetition(ctx, c); err != nil {
		return nil, lookupError(err, "competition", id)
	}
	s.log.Info("Competition updated", "competition_id", id, "user", p.Username)
	return c, nil
}

// List returns every competition, latest date first
func (s *CompetitionService) List(ctx context.Context) ([]models.Competition, error) {
	competitions, err := s.repo.ListCompetitions(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return competitions, nil
}

func (s *CompetitionService) Get(ctx context.Context, id int) (*models.Competition, error) {
	c, err := s.repo.GetCompetition(ctx, id)
	if err != nil {
		return nil, lookupError(err, "competition", id)
	}
	return c, nil
}

// Live returns the competition currently live
func (s *CompetitionService) Live(ctx context.Context) (*models.Competition, error) {
	c, err := s.repo.GetLiveCompetition(ctx)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoLiveCompetition
		}
		return nil, internalError(err)
	}
	return c, nil
}

// Start makes a competition live. Whatever was live before is ended first,
// in the same transaction, so at most one competition is ever live.
func (s *CompetitionService) Start(ctx context.Context, p auth.Principal, id int) (*models.Competition, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		ended   []int
		already bool
	)
	now := s.now()
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		c, err := tx.GetCompetition(ctx, id)
		if err != nil {
			return lookupError(err, "competition", id)
		}
		switch c.Status {
		case models.StatusLive:
			already = true
			return nil
		case models.StatusEnded:
			return ErrCompetitionEnded
		}

		if ended, err = tx.EndLiveCompetitions(ctx, id, now); err != nil {
			return err
		}
		return tx.SetCompetitionStatus(ctx, id, models.StatusLive, now)
	})
	if err != nil {
		return nil, internalError(err)
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if already {
		return c, nil
	}

	for _, endedID := range ended {
		s.log.Info("Competition ended to start another", "competition_id", endedID, "started_id", id)
		if prev, err := s.repo.GetCompetition(ctx, endedID); err == nil {
			s.broadcastStatus(prev)
		}
	}
	s.log.Info("Competition started", "competition_id", id, "name", c.Name, "user", p.Username)
	s.broadcastStatus(c)
	return c, nil
}

// End closes a live competition
func (s *CompetitionService) End(ctx context.Context, p auth.Principal, id int) (*models.Competition, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		c, err := tx.GetCompetition(ctx, id)
		if err != nil {
			return lookupError(err, "competition", id)
		}
		if c.Status != models.StatusLive {
			return errors.Conflictf("only a live competition can be ended (competition %d is %s)", id, c.Status)
		}
		return tx.SetCompetitionStatus(ctx, id, models.StatusEnded, s.now())
	})
	if err != nil {
		return nil, internalError(err)
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("Competition ended", "competition_id", id, "name", c.Name, "user", p.Username)
	s.broadcastStatus(c)
	return c, nil
}

// Delete removes a draft or ended competition with all of its entries,
// scores and judge scores. Either everything goes or nothing does.
func (s *CompetitionService) Delete(ctx context.Context, p auth.Principal, id int) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}

	var entries int
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		c, err := tx.GetCompetition(ctx, id)
		if err != nil {
			return lookupError(err, "competition", id)
		}
		if c.Status == models.StatusLive {
			return ErrCompetitionIsLive
		}
		if entries, err = deleteEntriesWhere(ctx, tx, repository.EntryFilter{CompetitionID: &id}); err != nil {
			return err
		}
		return tx.DeleteCompetition(ctx, id)
	})
	if err != nil {
		err = consistencyError("competition", err)
		if errors.Is(err, errors.ErrConsistency) {
			s.log.Error("Competition delete rolled back", "competition_id", id, "error", err)
		}
		return err
	}

	s.log.Info("Competition deleted", "competition_id", id, "entries", entries, "user", p.Username)
	return nil
}

func (s *CompetitionService) broadcastStatus(c *models.Competition) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastCompetitionStatus(models.CompetitionStatusPayload{
		CompetitionID: c.ID,
		Name:          c.Name,
		Status:        c.Status,
	})
}
