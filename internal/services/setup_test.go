package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/testutil"
)

// Fixture principals use IDs above anything a test registers, so an admin
// acting on a freshly registered user is never acting on itself.
var (
	admin  = auth.Principal{UserID: 1000, Username: "admin", Role: models.RoleAdmin}
	judge  = auth.Principal{UserID: 1001, Username: "judge1", Role: models.RoleJudge}
	viewer = auth.Principal{UserID: 1002, Username: "parent", Role: models.RoleUser}
)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu       sync.Mutex
	scores   []models.ScoreSubmittedPayload
	statuses []models.CompetitionStatusPayload
}

func (b *recordingBroadcaster) BroadcastScoreSubmitted(p models.ScoreSubmittedPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores = append(b.scores, p)
}

func (b *recordingBroadcaster) BroadcastCompetitionStatus(p models.CompetitionStatusPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, p)
}

var _ services.Broadcaster = (*recordingBroadcaster)(nil)

// expectKind fails the test unless err carries kind
func expectKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := errors.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}

// score submits a single-mark score as admin or fails the test
func score(t *testing.T, svc *services.ScoringService, entryID, apparatusID int, e, d, penalty float64) *services.SubmitResult {
	t.Helper()
	res, err := svc.SubmitScore(context.Background(), admin, services.SubmitScoreInput{
		EntryID:         entryID,
		ApparatusID:     apparatusID,
		DScore:          d,
		Penalty:         penalty,
		ExecutionScores: []float64{e},
	})
	if err != nil {
		t.Fatalf("SubmitScore(entry %d, apparatus %d) failed: %v", entryID, apparatusID, err)
	}
	return res
}

func countEntries(t *testing.T, repo repository.FullRepository, competitionID int) int {
	t.Helper()
	entries, err := repo.ListEntries(context.Background(), &competitionID)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	return len(entries)
}

func countScores(t *testing.T, repo repository.FullRepository, competitionID int) int {
	t.Helper()
	_, total, err := repo.SearchResults(context.Background(), repository.ResultFilter{CompetitionID: &competitionID, SortBy: "total"})
	if err != nil {
		t.Fatalf("SearchResults failed: %v", err)
	}
	return total
}

// newLiveMeet is testutil.NewLiveMeet with the scoring service wired up
func newLiveMeet(t *testing.T, names ...string) (*services.ScoringService, *repository.Repository, testutil.LiveMeet) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	meet := testutil.NewLiveMeet(t, repo, models.Level4, names...)
	return services.NewScoringService(logger.New(), repo), repo, meet
}
