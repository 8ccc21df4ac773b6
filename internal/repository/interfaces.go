package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/gymscore/internal/models"
)

// ClubRepository defines club and season data operations
type ClubRepository interface {
	CreateClub(ctx context.Context, name string) (int, error)
	GetClub(ctx context.Context, id int) (*models.Club, error)
	GetClubByName(ctx context.Context, name string) (*models.Club, error)
	ListClubs(ctx context.Context) ([]models.Club, error)
	DeleteClub(ctx context.Context, id int) error
	GetOrCreateSeason(ctx context.Context, year int) (int, error)
	ListSeasons(ctx context.Context) ([]models.Season, error)
}

// GymnastRepository defines gymnast data operations
type GymnastRepository interface {
	CreateGymnast(ctx context.Context, g *models.Gymnast) (int, error)
	UpdateGymnast(ctx context.Context, g *models.Gymnast) error
	GetGymnast(ctx context.Context, id int) (*models.Gymnast, error)
	GetGymnastByUser(ctx context.Context, userID int) (*models.Gymnast, error)
	ListGymnasts(ctx context.Context) ([]models.Gymnast, error)
	DeleteGymnast(ctx context.Context, id int) error
	LevelsInUse(ctx context.Context) ([]models.Level, error)
}

// CompetitionRepository defines competition data operations
type CompetitionRepository interface {
	CreateCompetition(ctx context.Context, c *models.Competition) (int, error)
	UpdateCompetition(ctx context.Context, c *models.Competition) error
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	GetLiveCompetition(ctx context.Context) (*models.Competition, error)
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
	ListCompetitionsBetween(ctx context.Context, from, to time.Time) ([]models.Competition, error)
	SetCompetitionStatus(ctx context.Context, id int, status models.CompetitionStatus, at time.Time) error
	EndLiveCompetitions(ctx context.Context, exceptID int, at time.Time) ([]int, error)
	DeleteCompetition(ctx context.Context, id int) error
}

// EntryRepository defines entry data operations
type EntryRepository interface {
	CreateEntry(ctx context.Context, competitionID, gymnastID int) (int, error)
	GetEntry(ctx context.Context, id int) (*models.Entry, error)
	GetEntryDetail(ctx context.Context, id int) (*models.EntryDetail, error)
	ListEntries(ctx context.Context, competitionID *int) ([]models.EntryDetail, error)
	ListEntryIDs(ctx context.Context, filter EntryFilter) ([]int, error)
	DeleteEntries(ctx context.Context, ids []int) error
}

// ScoreRepository defines apparatus, score and judge score data operations
type ScoreRepository interface {
	ListApparatus(ctx context.Context) ([]models.Apparatus, error)
	GetApparatus(ctx context.Context, id int) (*models.Apparatus, error)
	CountApparatus(ctx context.Context) (int, error)
	EnsureScore(ctx context.Context, entryID, apparatusID int) (int, error)
	UpdateScoreValues(ctx context.Context, s *models.Score) error
	ReplaceJudgeScores(ctx context.Context, scoreID int, judges []models.JudgeScore) error
	ListJudgeScores(ctx context.Context, scoreID int) ([]models.JudgeScore, error)
	GetScore(ctx context.Context, id int) (*models.Score, error)
	GetScoreFor(ctx context.Context, entryID, apparatusID int) (*models.Score, error)
	DeleteScore(ctx context.Context, id int) error
	DeleteJudgeScoresForEntries(ctx context.Context, entryIDs []int) error
	DeleteScoresForEntries(ctx context.Context, entryIDs []int) error
	CountScoredApparatus(ctx context.Context, entryID int) (int, error)
}

// LeaderboardRepository defines read-only aggregation queries
type LeaderboardRepository interface {
	AllAroundLeaderboard(ctx context.Context, competitionID int, level models.Level) ([]models.AllAroundRow, error)
	ApparatusLeaderboard(ctx context.Context, competitionID int, level models.Level, apparatusID int) ([]models.ApparatusRow, error)
	EntryScoreCounts(ctx context.Context, competitionID int) ([]models.EntryProgress, error)
	LevelsInCompetition(ctx context.Context, competitionID int) ([]models.Level, error)
	GymnastApparatusBest(ctx context.Context, gymnastID int) ([]models.ApparatusBest, error)
	GymnastHistory(ctx context.Context, gymnastID int) ([]models.CompetitionResult, error)
	SearchResults(ctx context.Context, f ResultFilter) ([]models.ResultRow, int, error)
}

// UserRepository defines user and athlete application data operations
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (int, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserRole(ctx context.Context, id int, role models.Role) error
	SetUserPassword(ctx context.Context, id int, passwordHash string) error
	CreateApplication(ctx context.Context, app *models.AthleteApplication) (int, error)
	GetApplication(ctx context.Context, id int) (*models.AthleteApplication, error)
	ListApplications(ctx context.Context, status models.ApplicationStatus) ([]models.AthleteApplication, error)
	HasPendingApplication(ctx context.Context, userID int) (bool, error)
	SetApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus, at time.Time) error
}

// Transactor runs a unit of work atomically
type Transactor interface {
	WithTx(ctx context.Context, fn func(FullRepository) error) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	ClubRepository
	GymnastRepository
	CompetitionRepository
	EntryRepository
	ScoreRepository
	LeaderboardRepository
	UserRepository
	Transactor
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
