package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
// Injected errors also apply inside WithTx, so a failure partway through a
// transaction exercises the rollback path.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.DeleteScoresForEntriesError = errors.New("database error")
//	svc := services.NewCompetitionService(log, mockRepo, nil)
//	err := svc.Delete(ctx, admin, competitionID)
//	// err is a consistency error and nothing was deleted
type Repository struct {
	repository.FullRepository

	// root is the top-level mock when this copy is bound to a transaction
	root *Repository

	// ===== Roster Errors =====
	CreateClubError        error
	ListClubsError         error
	GetOrCreateSeasonError error
	CreateGymnastError     error
	GetGymnastError        error
	ListGymnastsError      error
	DeleteGymnastError     error

	// ===== Competition Errors =====
	CreateCompetitionError    error
	GetCompetitionError       error
	GetLiveCompetitionError   error
	ListCompetitionsError     error
	SetCompetitionStatusError error
	EndLiveCompetitionsError  error
	DeleteCompetitionError    error

	// ===== Entry Errors =====
	CreateEntryError   error
	GetEntryError      error
	ListEntryIDsError  error
	DeleteEntriesError error

	// ===== Score Errors =====
	ListApparatusError               error
	GetApparatusError                error
	CountApparatusError              error
	EnsureScoreError                 error
	UpdateScoreValuesError           error
	ReplaceJudgeScoresError          error
	DeleteScoreError                 error
	DeleteJudgeScoresForEntriesError error
	DeleteScoresForEntriesError      error

	// EnsureScoreDuplicates makes the next N EnsureScore calls fail with
	// repository.ErrDuplicate, as a concurrent creator would.
	EnsureScoreDuplicates int

	// ===== Leaderboard Errors =====
	AllAroundLeaderboardError error
	ApparatusLeaderboardError error
	EntryScoreCountsError     error
	LevelsInCompetitionError  error
	SearchResultsError        error

	// ===== User Errors =====
	CreateUserError           error
	GetUserByUsernameError    error
	ListUsersError            error
	SetUserRoleError          error
	CreateApplicationError    error
	SetApplicationStatusError error

	// ===== Transaction Errors =====
	WithTxError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

func (m *Repository) owner() *Repository {
	if m.root != nil {
		return m.root
	}
	return m
}

// ===== Transaction Methods =====

func (m *Repository) WithTx(ctx context.Context, fn func(repository.FullRepository) error) error {
	if m.WithTxError != nil {
		return m.WithTxError
	}
	return m.FullRepository.WithTx(ctx, func(tx repository.FullRepository) error {
		bound := *m
		bound.FullRepository = tx
		bound.root = m.owner()
		return fn(&bound)
	})
}

// ===== Roster Methods =====

func (m *Repository) CreateClub(ctx context.Context, name string) (int, error) {
	if m.CreateClubError != nil {
		return 0, m.CreateClubError
	}
	return m.FullRepository.CreateClub(ctx, name)
}

func (m *Repository) ListClubs(ctx context.Context) ([]models.Club, error) {
	if m.ListClubsError != nil {
		return nil, m.ListClubsError
	}
	return m.FullRepository.ListClubs(ctx)
}

func (m *Repository) GetOrCreateSeason(ctx context.Context, year int) (int, error) {
	if m.GetOrCreateSeasonError != nil {
		return 0, m.GetOrCreateSeasonError
	}
	return m.FullRepository.GetOrCreateSeason(ctx, year)
}

func (m *Repository) CreateGymnast(ctx context.Context, g *models.Gymnast) (int, error) {
	if m.CreateGymnastError != nil {
		return 0, m.CreateGymnastError
	}
	return m.FullRepository.CreateGymnast(ctx, g)
}

func (m *Repository) GetGymnast(ctx context.Context, id int) (*models.Gymnast, error) {
	if m.GetGymnastError != nil {
		return nil, m.GetGymnastError
	}
	return m.FullRepository.GetGymnast(ctx, id)
}

func (m *Repository) ListGymnasts(ctx context.Context) ([]models.Gymnast, error) {
	if m.ListGymnastsError != nil {
		return nil, m.ListGymnastsError
	}
	return m.FullRepository.ListGymnasts(ctx)
}

func (m *Repository) DeleteGymnast(ctx context.Context, id int) error {
	if m.DeleteGymnastError != nil {
		return m.DeleteGymnastError
	}
	return m.FullRepository.DeleteGymnast(ctx, id)
}

// ===== Competition Methods =====

func (m *Repository) CreateCompetition(ctx context.Context, c *models.Competition) (int, error) {
	if m.CreateCompetitionError != nil {
		return 0, m.CreateCompetitionError
	}
	return m.FullRepository.CreateCompetition(ctx, c)
}

func (m *Repository) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	if m.GetCompetitionError != nil {
		return nil, m.GetCompetitionError
	}
	return m.FullRepository.GetCompetition(ctx, id)
}

func (m *Repository) GetLiveCompetition(ctx context.Context) (*models.Competition, error) {
	if m.GetLiveCompetitionError != nil {
		return nil, m.GetLiveCompetitionError
	}
	return m.FullRepository.GetLiveCompetition(ctx)
}

func (m *Repository) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	if m.ListCompetitionsError != nil {
		return nil, m.ListCompetitionsError
	}
	return m.FullRepository.ListCompetitions(ctx)
}

func (m *Repository) SetCompetitionStatus(ctx context.Context, id int, status models.CompetitionStatus, at time.Time) error {
	if m.SetCompetitionStatusError != nil {
		return m.SetCompetitionStatusError
	}
	return m.FullRepository.SetCompetitionStatus(ctx, id, status, at)
}

func (m *Repository) EndLiveCompetitions(ctx context.Context, exceptID int, at time.Time) ([]int, error) {
	if m.EndLiveCompetitionsError != nil {
		return nil, m.EndLiveCompetitionsError
	}
	return m.FullRepository.EndLiveCompetitions(ctx, exceptID, at)
}

func (m *Repository) DeleteCompetition(ctx context.Context, id int) error {
	if m.DeleteCompetitionError != nil {
		return m.DeleteCompetitionError
	}
	return m.FullRepository.DeleteCompetition(ctx, id)
}

// ===== Entry Methods =====

func (m *Repository) CreateEntry(ctx context.Context, competitionID, gymnastID int) (int, error) {
	if m.CreateEntryError != nil {
		return 0, m.CreateEntryError
	}
	return m.FullRepository.CreateEntry(ctx, competitionID, gymnastID)
}

func (m *Repository) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	if m.GetEntryError != nil {
		return nil, m.GetEntryError
	}
	return m.FullRepository.GetEntry(ctx, id)
}

func (m *Repository) ListEntryIDs(ctx context.Context, filter repository.EntryFilter) ([]int, error) {
	if m.ListEntryIDsError != nil {
		return nil, m.ListEntryIDsError
	}
	return m.FullRepository.ListEntryIDs(ctx, filter)
}

func (m *Repository) DeleteEntries(ctx context.Context, ids []int) error {
	if m.DeleteEntriesError != nil {
		return m.DeleteEntriesError
	}
	return m.FullRepository.DeleteEntries(ctx, ids)
}

// ===== Score Methods =====

func (m *Repository) ListApparatus(ctx context.Context) ([]models.Apparatus, error) {
	if m.ListApparatusError != nil {
		return nil, m.ListApparatusError
	}
	return m.FullRepository.ListApparatus(ctx)
}

func (m *Repository) GetApparatus(ctx context.Context, id int) (*models.Apparatus, error) {
	if m.GetApparatusError != nil {
		return nil, m.GetApparatusError
	}
	return m.FullRepository.GetApparatus(ctx, id)
}

func (m *Repository) CountApparatus(ctx context.Context) (int, error) {
	if m.CountApparatusError != nil {
		return 0, m.CountApparatusError
	}
	return m.FullRepository.CountApparatus(ctx)
}

func (m *Repository) EnsureScore(ctx context.Context, entryID, apparatusID int) (int, error) {
	if o := m.owner(); o.EnsureScoreDuplicates > 0 {
		o.EnsureScoreDuplicates--
		return 0, repository.ErrDuplicate
	}
	if m.EnsureScoreError != nil {
		return 0, m.EnsureScoreError
	}
	return m.FullRepository.EnsureScore(ctx, entryID, apparatusID)
}

func (m *Repository) UpdateScoreValues(ctx context.Context, s *models.Score) error {
	if m.UpdateScoreValuesError != nil {
		return m.UpdateScoreValuesError
	}
	return m.FullRepository.UpdateScoreValues(ctx, s)
}

func (m *Repository) ReplaceJudgeScores(ctx context.Context, scoreID int, judges []models.JudgeScore) error {
	if m.ReplaceJudgeScoresError != nil {
		return m.ReplaceJudgeScoresError
	}
	return m.FullRepository.ReplaceJudgeScores(ctx, scoreID, judges)
}

func (m *Repository) DeleteScore(ctx context.Context, id int) error {
	if m.DeleteScoreError != nil {
		return m.DeleteScoreError
	}
	return m.FullRepository.DeleteScore(ctx, id)
}

func (m *Repository) DeleteJudgeScoresForEntries(ctx context.Context, entryIDs []int) error {
	if m.DeleteJudgeScoresForEntriesError != nil {
		return m.DeleteJudgeScoresForEntriesError
	}
	return m.FullRepository.DeleteJudgeScoresForEntries(ctx, entryIDs)
}

func (m *Repository) DeleteScoresForEntries(ctx context.Context, entryIDs []int) error {
	if m.DeleteScoresForEntriesError != nil {
		return m.DeleteScoresForEntriesError
	}
	return m.FullRepository.DeleteScoresForEntries(ctx, entryIDs)
}

// ===== Leaderboard Methods =====

func (m *Repository) AllAroundLeaderboard(ctx context.Context, competitionID int, level models.Level) ([]models.AllAroundRow, error) {
	if m.AllAroundLeaderboardError != nil {
		return nil, m.AllAroundLeaderboardError
	}
	return m.FullRepository.AllAroundLeaderboard(ctx, competitionID, level)
}

func (m *Repository) ApparatusLeaderboard(ctx context.Context, competitionID int, level models.Level, apparatusID int) ([]models.ApparatusRow, error) {
	if m.ApparatusLeaderboardError != nil {
		return nil, m.ApparatusLeaderboardError
	}
	return m.FullRepository.ApparatusLeaderboard(ctx, competitionID, level, apparatusID)
}

func (m *Repository) EntryScoreCounts(ctx context.Context, competitionID int) ([]models.EntryProgress, error) {
	if m.EntryScoreCountsError != nil {
		return nil, m.EntryScoreCountsError
	}
	return m.FullRepository.EntryScoreCounts(ctx, competitionID)
}

func (m *Repository) LevelsInCompetition(ctx context.Context, competitionID int) ([]models.Level, error) {
	if m.LevelsInCompetitionError != nil {
		return nil, m.LevelsInCompetitionError
	}
	return m.FullRepository.LevelsInCompetition(ctx, competitionID)
}

func (m *Repository) SearchResults(ctx context.Context, f repository.ResultFilter) ([]models.ResultRow, int, error) {
	if m.SearchResultsError != nil {
		return nil, 0, m.SearchResultsError
	}
	return m.FullRepository.SearchResults(ctx, f)
}

// ===== User Methods =====

func (m *Repository) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (int, error) {
	if m.CreateUserError != nil {
		return 0, m.CreateUserError
	}
	return m.FullRepository.CreateUser(ctx, username, passwordHash, role)
}

func (m *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameError != nil {
		return nil, m.GetUserByUsernameError
	}
	return m.FullRepository.GetUserByUsername(ctx, username)
}

func (m *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	return m.FullRepository.ListUsers(ctx)
}

func (m *Repository) SetUserRole(ctx context.Context, id int, role models.Role) error {
	if m.SetUserRoleError != nil {
		return m.SetUserRoleError
	}
	return m.FullRepository.SetUserRole(ctx, id, role)
}

func (m *Repository) CreateApplication(ctx context.Context, app *models.AthleteApplication) (int, error) {
	if m.CreateApplicationError != nil {
		return 0, m.CreateApplicationError
	}
	return m.FullRepository.CreateApplication(ctx, app)
}

func (m *Repository) SetApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus, at time.Time) error {
	if m.SetApplicationStatusError != nil {
		return m.SetApplicationStatusError
	}
	return m.FullRepository.SetApplicationStatus(ctx, id, status, at)
}

// Ensure Repository implements FullRepository
var _ repository.FullRepository = (*Repository)(nil)
