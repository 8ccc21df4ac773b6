package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// CreateClub inserts a club or fails the test
func CreateClub(t *testing.T, repo repository.FullRepository, name string) int {
	t.Helper()
	id, err := repo.CreateClub(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateClub(%q) failed: %v", name, err)
	}
	return id
}

// CreateGymnast inserts a gymnast or fails the test
func CreateGymnast(t *testing.T, repo repository.FullRepository, name string, level models.Level, clubID int) int {
	t.Helper()
	id, err := repo.CreateGymnast(context.Background(), &models.Gymnast{Name: name, Level: level, ClubID: clubID})
	if err != nil {
		t.Fatalf("CreateGymnast(%q) failed: %v", name, err)
	}
	return id
}

// CreateCompetition inserts a competition dated 2026-05-09 in the given status
func CreateCompetition(t *testing.T, repo repository.FullRepository, name string, status models.CompetitionStatus) int {
	t.Helper()
	ctx := context.Background()
	date := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)
	id, err := repo.CreateCompetition(ctx, &models.Competition{Name: name, Address: "Main Hall", Date: &date})
	if err != nil {
		t.Fatalf("CreateCompetition(%q) failed: %v", name, err)
	}
	if status != "" && status != models.StatusDraft {
		if err := repo.SetCompetitionStatus(ctx, id, status, time.Now()); err != nil {
			t.Fatalf("SetCompetitionStatus(%q) failed: %v", status, err)
		}
	}
	return id
}

// CreateEntry enters a gymnast in a competition or fails the test
func CreateEntry(t *testing.T, repo repository.FullRepository, competitionID, gymnastID int) int {
	t.Helper()
	id, err := repo.CreateEntry(context.Background(), competitionID, gymnastID)
	if err != nil {
		t.Fatalf("CreateEntry(%d, %d) failed: %v", competitionID, gymnastID, err)
	}
	return id
}

// Apparatus returns the seeded catalog
func Apparatus(t *testing.T, repo repository.FullRepository) []models.Apparatus {
	t.Helper()
	apparatus, err := repo.ListApparatus(context.Background())
	if err != nil {
		t.Fatalf("ListApparatus failed: %v", err)
	}
	return apparatus
}

// LiveMeet is a live competition with entered gymnasts, ready for scoring
type LiveMeet struct {
	ClubID        int
	CompetitionID int
	Gymnasts      []int
	Entries       []int
	Apparatus     []models.Apparatus
}

// NewLiveMeet creates a live competition with one entered gymnast per name, all at level
func NewLiveMeet(t *testing.T, repo repository.FullRepository, level models.Level, names ...string) LiveMeet {
	t.Helper()
	m := LiveMeet{
		ClubID:    CreateClub(t, repo, "Riverside GC"),
		Apparatus: Apparatus(t, repo),
	}
	m.CompetitionID = CreateCompetition(t, repo, "Spring Open", models.StatusLive)
	for _, name := range names {
		gid := CreateGymnast(t, repo, name, level, m.ClubID)
		m.Gymnasts = append(m.Gymnasts, gid)
		m.Entries = append(m.Entries, CreateEntry(t, repo, m.CompetitionID, gid))
	}
	return m
}
