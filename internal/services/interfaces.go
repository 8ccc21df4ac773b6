package services

import (
	"context"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/models"
)

// Broadcaster pushes committed changes to connected clients
type Broadcaster interface {
	BroadcastScoreSubmitted(payload models.ScoreSubmittedPayload)
	BroadcastCompetitionStatus(payload models.CompetitionStatusPayload)
}

// ScoringServicer defines the interface for scoring operations
type ScoringServicer interface {
	SubmitScore(ctx context.Context, p auth.Principal, in SubmitScoreInput) (*SubmitResult, error)
	DeleteScore(ctx context.Context, p auth.Principal, scoreID int) error
	GetScore(ctx context.Context, entryID, apparatusID int) (*models.Score, error)
	SetBroadcaster(b Broadcaster)
}

// LeaderboardServicer defines the interface for ranking and progress queries
type LeaderboardServicer interface {
	AllAround(ctx context.Context, competitionID int, level models.Level) ([]models.AllAroundRow, error)
	Apparatus(ctx context.Context, competitionID int, level models.Level, apparatusID int) ([]models.ApparatusRow, error)
	Progress(ctx context.Context, competitionID int) (*models.Progress, error)
	LiveBoard(ctx context.Context, level models.Level, apparatusID int) (*LiveBoard, error)
	GymnastProfile(ctx context.Context, gymnastID int) (*models.GymnastProfile, error)
}

// CompetitionServicer defines the interface for competition operations
type CompetitionServicer interface {
	Create(ctx context.Context, p auth.Principal, in CompetitionInput) (*models.Competition, error)
	Update(ctx context.Context, p auth.Principal, id int, in CompetitionInput) (*models.Competition, error)
	List(ctx context.Context) ([]models.Competition, error)
	Get(ctx context.Context, id int) (*models.Competition, error)
	Live(ctx context.Context) (*models.Competition, error)
	Start(ctx context.Context, p auth.Principal, id int) (*models.Competition, error)
	End(ctx context.Context, p auth.Principal, id int) (*models.Competition, error)
	Delete(ctx context.Context, p auth.Principal, id int) error
	Calendar(ctx context.Context, year, month int) (*Calendar, error)
	SetBroadcaster(b Broadcaster)
}

// RosterServicer defines the interface for club, gymnast and entry operations
type RosterServicer interface {
	CreateClub(ctx context.Context, p auth.Principal, name string) (*models.Club, error)
	ListClubs(ctx context.Context) ([]models.Club, error)
	DeleteClub(ctx context.Context, p auth.Principal, id int) error
	CreateGymnast(ctx context.Context, p auth.Principal, in GymnastInput) (*models.Gymnast, error)
	UpdateGymnast(ctx context.Context, p auth.Principal, id int, in GymnastInput) (*models.Gymnast, error)
	GetGymnast(ctx context.Context, id int) (*models.Gymnast, error)
	ListGymnasts(ctx context.Context) ([]models.Gymnast, error)
	DeleteGymnast(ctx context.Context, p auth.Principal, id int) error
	CreateEntry(ctx context.Context, p auth.Principal, competitionID, gymnastID int) (*models.EntryDetail, error)
	BulkAddEntries(ctx context.Context, p auth.Principal, competitionID int, gymnastIDs []int) (*BulkAddResult, error)
	ListEntries(ctx context.Context, competitionID *int) ([]models.EntryDetail, error)
	DeleteEntry(ctx context.Context, p auth.Principal, id int) error
	Levels(ctx context.Context) ([]models.Level, error)
	Apparatus(ctx context.Context) ([]models.Apparatus, error)
}

// ResultsServicer defines the interface for results search and export
type ResultsServicer interface {
	Search(ctx context.Context, q ResultsQuery) (models.Page[models.ResultRow], error)
	ExportXLSX(ctx context.Context, q ResultsQuery) ([]byte, error)
	CompetitionExportXLSX(ctx context.Context, competitionID int) ([]byte, error)
	LiveQR(ctx context.Context, baseURL string) ([]byte, error)
}

// UserServicer defines the interface for accounts and athlete applications
type UserServicer interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	List(ctx context.Context, p auth.Principal) ([]models.User, error)
	SetRole(ctx context.Context, p auth.Principal, userID int, role models.Role) (*models.User, error)
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
	Apply(ctx context.Context, p auth.Principal, in ApplicationInput) (*models.AthleteApplication, error)
	ListPending(ctx context.Context, p auth.Principal) ([]models.AthleteApplication, error)
	Approve(ctx context.Context, p auth.Principal, id int) (*models.Gymnast, error)
	Reject(ctx context.Context, p auth.Principal, id int) error
	UpdateProfile(ctx context.Context, p auth.Principal, in ProfileInput) (*models.Gymnast, error)
}

// Ensure concrete types implement interfaces
var (
	_ ScoringServicer     = (*ScoringService)(nil)
	_ LeaderboardServicer = (*LeaderboardService)(nil)
	_ CompetitionServicer = (*CompetitionService)(nil)
	_ RosterServicer      = (*RosterService)(nil)
	_ ResultsServicer     = (*ResultsService)(nil)
	_ UserServicer        = (*UserService)(nil)
)
