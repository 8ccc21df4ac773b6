package services_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
	"github.com/abrezinsky/gymscore/internal/repository/mock"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/testutil"
)

func setupRosterService(t *testing.T) (*services.RosterService, *repository.Repository) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	return services.NewRosterService(logger.New(), repo), repo
}

func intPtr(n int) *int { return &n }

func TestClubs(t *testing.T) {
	svc, repo := setupRosterService(t)
	ctx := context.Background()

	club, err := svc.CreateClub(ctx, admin, "  Riverside GC ")
	if err != nil {
		t.Fatalf("CreateClub failed: %v", err)
	}
	if club.Name != "Riverside GC" {
		t.Errorf("expected trimmed name, got %q", club.Name)
	}

	_, err = svc.CreateClub(ctx, admin, "Riverside GC")
	expectKind(t, err, errors.ErrConflict)
	var appErr *errors.Error
	if stderrors.As(err, &appErr); appErr.Field != "name" {
		t.Errorf("expected the conflict on field name, got %q", appErr.Field)
	}

	_, err = svc.CreateClub(ctx, admin, " ")
	expectKind(t, err, errors.ErrValidation)
	_, err = svc.CreateClub(ctx, judge, "Judges GC")
	expectKind(t, err, errors.ErrForbidden)

	testutil.CreateGymnast(t, repo, "Ana", models.Level4, club.ID)
	if err := svc.DeleteClub(ctx, admin, club.ID); !stderrors.Is(err, services.ErrClubInUse) {
		t.Errorf("expected ErrClubInUse, got %v", err)
	}

	empty, _ := svc.CreateClub(ctx, admin, "Empty GC")
	if err := svc.DeleteClub(ctx, admin, empty.ID); err != nil {
		t.Errorf("DeleteClub failed: %v", err)
	}
	expectKind(t, svc.DeleteClub(ctx, admin, empty.ID), errors.ErrNotFound)

	clubs, err := svc.ListClubs(ctx)
	if err != nil || len(clubs) != 1 {
		t.Errorf("expected 1 club, got %v (%v)", clubs, err)
	}
}

func TestCreateGymnast(t *testing.T) {
	svc, repo := setupRosterService(t)
	ctx := context.Background()
	clubID := testutil.CreateClub(t, repo, "Riverside GC")

	g, err := svc.CreateGymnast(ctx, admin, services.GymnastInput{
		Name: " Ana Silva ", Level: "Level 6", ClubID: clubID, Age: intPtr(14), Goals: "Make nationals",
	})
	if err != nil {
		t.Fatalf("CreateGymnast failed: %v", err)
	}
	if g.Name != "Ana Silva" || g.Level != models.Level6 || g.ClubName != "Riverside GC" || *g.Age != 14 {
		t.Errorf("unexpected gymnast: %+v", g)
	}

	updated, err := svc.UpdateGymnast(ctx, admin, g.ID, services.GymnastInput{
		Name: "Ana Silva", Level: "Level 7", ClubID: clubID, Injuries: "Left wrist",
	})
	if err != nil {
		t.Fatalf("UpdateGymnast failed: %v", err)
	}
	if updated.Level != models.Level7 || updated.Injuries != "Left wrist" || updated.Age != nil {
		t.Errorf("unexpected update: %+v", updated)
	}
}

func TestCreateGymnast_Validation(t *testing.T) {
	svc, repo := setupRosterService(t)
	clubID := testutil.CreateClub(t, repo, "Riverside GC")

	tests := []struct {
		name string
		in   services.GymnastInput
		kind errors.Kind
	}{
		{"missing name", services.GymnastInput{Level: "Level 4", ClubID: clubID}, errors.ErrValidation},
		{"unknown level", services.GymnastInput{Name: "Ana", Level: "Level 12", ClubID: clubID}, errors.ErrValidation},
		{"age zero", services.GymnastInput{Name: "Ana", Level: "Level 4", ClubID: clubID, Age: intPtr(0)}, errors.ErrValidation},
		{"age over 100", services.GymnastInput{Name: "Ana", Level: "Level 4", ClubID: clubID, Age: intPtr(101)}, errors.ErrValidation},
		{"no club", services.GymnastInput{Name: "Ana", Level: "Level 4"}, errors.ErrValidation},
		{"unknown club", services.GymnastInput{Name: "Ana", Level: "Level 4", ClubID: 404}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGymnast(context.Background(), admin, tt.in)
			expectKind(t, err, tt.kind)
		})
	}
}

func TestEntries(t *testing.T) {
	svc, repo := setupRosterService(t)
	ctx := context.Background()
	clubID := testutil.CreateClub(t, repo, "Riverside GC")
	compID := testutil.CreateCompetition(t, repo, "Spring Open", models.StatusDraft)
	gid := testutil.CreateGymnast(t, repo, "Ana", models.Level4, clubID)

	entry, err := svc.CreateEntry(ctx, admin, compID, gid)
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if entry.GymnastName != "Ana" || entry.CompetitionName != "Spring Open" || entry.Level != models.Level4 {
		t.Errorf("unexpected entry: %+v", entry)
	}

	if _, err := svc.CreateEntry(ctx, admin, compID, gid); !stderrors.Is(err, services.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
	_, err = svc.CreateEntry(ctx, admin, 404, gid)
	expectKind(t, err, errors.ErrNotFound)
	_, err = svc.CreateEntry(ctx, admin, compID, 404)
	expectKind(t, err, errors.ErrNotFound)

	all, err := svc.ListEntries(ctx, nil)
	if err != nil || len(all) != 1 {
		t.Errorf("expected 1 entry, got %v (%v)", all, err)
	}
}

func TestBulkAddEntries(t *testing.T) {
	svc, repo := setupRosterService(t)
	ctx := context.Background()
	clubID := testutil.CreateClub(t, repo, "Riverside GC")
	compID := testutil.CreateCompetition(t, repo, "Spring Open", models.StatusDraft)
	a := testutil.CreateGymnast(t, repo, "Ana", models.Level4, clubID)
	b := testutil.CreateGymnast(t, repo, "Bea", models.Level4, clubID)
	c := testutil.CreateGymnast(t, repo, "Cleo", models.Level5, clubID)
	testutil.CreateEntry(t, repo, compID, a)

	res, err := svc.BulkAddEntries(ctx, admin, compID, []int{a, b, c, b})
	if err != nil {
		t.Fatalf("BulkAddEntries failed: %v", err)
	}
	if res.Added != 2 || res.Duplicates != 2 {
		t.Errorf("expected 2 added and 2 duplicates, got %+v", res)
	}
	if n := countEntries(t, repo, compID); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}

	_, err = svc.BulkAddEntries(ctx, admin, compID, nil)
	expectKind(t, err, errors.ErrValidation)
}

func TestBulkAddEntries_UnknownGymnastAbortsBatch(t *testing.T) {
	svc, repo := setupRosterService(t)
	ctx := context.Background()
	clubID := testutil.CreateClub(t, repo, "Riverside GC")
	compID := testutil.CreateCompetition(t, repo, "Spring Open", models.StatusDraft)
	a := testutil.CreateGymnast(t, repo, "Ana", models.Level4, clubID)

	_, err := svc.BulkAddEntries(ctx, admin, compID, []int{a, 404})
	expectKind(t, err, errors.ErrNotFound)
	if n := countEntries(t, repo, compID); n != 0 {
		t.Errorf("expected the batch rolled back, got %d entries", n)
	}
}

func TestDeleteEntry_Cascades(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana", "Bea")
	svc := services.NewRosterService(logger.New(), repo)
	ctx := context.Background()
	score(t, scoring, meet.Entries[0], meet.Apparatus[0].ID, 8, 4, 0)
	score(t, scoring, meet.Entries[1], meet.Apparatus[0].ID, 8, 4, 0)

	if err := svc.DeleteEntry(ctx, admin, meet.Entries[0]); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if n := countEntries(t, repo, meet.CompetitionID); n != 1 {
		t.Errorf("expected 1 entry left, got %d", n)
	}
	if n := countScores(t, repo, meet.CompetitionID); n != 1 {
		t.Errorf("expected 1 score left, got %d", n)
	}
	expectKind(t, svc.DeleteEntry(ctx, admin, meet.Entries[0]), errors.ErrNotFound)
}

func TestDeleteGymnast_Cascades(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana", "Bea")
	svc := services.NewRosterService(logger.New(), repo)
	ctx := context.Background()

	// a second competition for the same gymnast
	draft := testutil.CreateCompetition(t, repo, "Autumn Cup", models.StatusDraft)
	testutil.CreateEntry(t, repo, draft, meet.Gymnasts[0])
	if _, err := scoring.SubmitScore(ctx, admin, services.SubmitScoreInput{
		EntryID: meet.Entries[0], ApparatusID: meet.Apparatus[0].ID, DScore: 4, ExecutionScores: []float64{8, 9},
	}); err != nil {
		t.Fatalf("SubmitScore failed: %v", err)
	}

	if err := svc.DeleteGymnast(ctx, admin, meet.Gymnasts[0]); err != nil {
		t.Fatalf("DeleteGymnast failed: %v", err)
	}
	_, err := svc.GetGymnast(ctx, meet.Gymnasts[0])
	expectKind(t, err, errors.ErrNotFound)
	if n := countEntries(t, repo, meet.CompetitionID) + countEntries(t, repo, draft); n != 1 {
		t.Errorf("expected only Bea's entry left, got %d", n)
	}
	if n := countScores(t, repo, meet.CompetitionID); n != 0 {
		t.Errorf("expected Ana's scores removed, got %d", n)
	}
}

func TestDeleteGymnast_RollsBackOnFailure(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana")
	m := mock.NewRepository(repo)
	m.DeleteGymnastError = stderrors.New("constraint check failed")
	svc := services.NewRosterService(logger.New(), m)
	score(t, scoring, meet.Entries[0], meet.Apparatus[0].ID, 8, 4, 0)

	expectKind(t, svc.DeleteGymnast(context.Background(), admin, meet.Gymnasts[0]), errors.ErrConsistency)
	if n := countEntries(t, repo, meet.CompetitionID); n != 1 {
		t.Errorf("expected the entry to survive, got %d", n)
	}
	if n := countScores(t, repo, meet.CompetitionID); n != 1 {
		t.Errorf("expected the score to survive, got %d", n)
	}
}

func TestLevelsAndApparatus(t *testing.T) {
	svc, repo := setupRosterService(t)
	ctx := context.Background()
	clubID := testutil.CreateClub(t, repo, "Riverside GC")
	for _, l := range []models.Level{models.SeniorInternational, models.Level9, models.Level1, models.Level9} {
		testutil.CreateGymnast(t, repo, "G "+string(l), l, clubID)
	}

	levels, err := svc.Levels(ctx)
	if err != nil {
		t.Fatalf("Levels failed: %v", err)
	}
	if want := []models.Level{models.Level1, models.Level9, models.SeniorInternational}; !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %v, want %v", levels, want)
	}

	apparatus, err := svc.Apparatus(ctx)
	if err != nil {
		t.Fatalf("Apparatus failed: %v", err)
	}
	var names []string
	for _, a := range apparatus {
		names = append(names, a.Name)
	}
	if !reflect.DeepEqual(names, models.DefaultApparatus) {
		t.Errorf("apparatus = %v, want %v", names, models.DefaultApparatus)
	}
}
