package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
	"github.com/abrezinsky/gymscore/internal/repository/mock"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/testutil"
)

func setupCompetitionService(t *testing.T) (*services.CompetitionService, *repository.Repository, *recordingBroadcaster) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	svc := services.NewCompetitionService(logger.New(), repo)
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	return svc, repo, b
}

func TestCompetitionCreate(t *testing.T) {
	svc, repo, _ := setupCompetitionService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, admin, services.CompetitionInput{Name: " Spring Open ", Address: "Main Hall", Date: "2026-03-14"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Status != models.StatusDraft {
		t.Errorf("new competitions are drafts, got %s", c.Status)
	}
	if c.Name != "Spring Open" || c.DateString() != "2026-03-14" {
		t.Errorf("unexpected competition: %+v", c)
	}

	seasons, err := repo.ListSeasons(ctx)
	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if len(seasons) != 1 || seasons[0].Year != 2026 || c.SeasonID == nil || *c.SeasonID != seasons[0].ID {
		t.Errorf("expected the 2026 season, got %+v (competition season %v)", seasons, c.SeasonID)
	}

	// same year reuses the season
	if _, err := svc.Create(ctx, admin, services.CompetitionInput{Name: "Summer Open", Address: "Main Hall", Date: "2026-07-01"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if seasons, _ = repo.ListSeasons(ctx); len(seasons) != 1 {
		t.Errorf("expected one season, got %d", len(seasons))
	}
}

func TestCompetitionCreate_UndatedUsesCurrentSeason(t *testing.T) {
	svc, repo, _ := setupCompetitionService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, admin, services.CompetitionInput{Name: "Open", Address: "Main Hall"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Date != nil {
		t.Errorf("expected no date, got %v", c.Date)
	}
	seasons, _ := repo.ListSeasons(ctx)
	if len(seasons) != 1 || seasons[0].Year != time.Now().Year() {
		t.Errorf("expected the current season, got %+v", seasons)
	}
}

func TestCompetitionCreate_Validation(t *testing.T) {
	svc, _, _ := setupCompetitionService(t)

	tests := []struct {
		name  string
		in    services.CompetitionInput
		field string
	}{
		{"missing name", services.CompetitionInput{Address: "Hall"}, "name"},
		{"missing address", services.CompetitionInput{Name: "Open", Address: "  "}, "address"},
		{"bad date", services.CompetitionInput{Name: "Open", Address: "Hall", Date: "14/03/2026"}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), admin, tt.in)
			expectKind(t, err, errors.ErrValidation)
			var appErr *errors.Error
			if stderrors.As(err, &appErr); appErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, appErr.Field)
			}
		})
	}

	_, err := svc.Create(context.Background(), judge, services.CompetitionInput{Name: "Open", Address: "Hall"})
	expectKind(t, err, errors.ErrForbidden)
}

func TestCompetitionUpdate_KeepsStatus(t *testing.T) {
	svc, repo, _ := setupCompetitionService(t)
	id := testutil.CreateCompetition(t, repo, "Spring Open", models.StatusLive)

	c, err := svc.Update(context.Background(), admin, id, services.CompetitionInput{Name: "Spring Classic", Address: "Arena", Date: "2027-01-05"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if c.Status != models.StatusLive || c.Name != "Spring Classic" {
		t.Errorf("unexpected competition after update: %+v", c)
	}

	_, err = svc.Update(context.Background(), admin, 404, services.CompetitionInput{Name: "X", Address: "Y"})
	expectKind(t, err, errors.ErrNotFound)
}

func TestCompetitionStart_EndsPreviousLive(t *testing.T) {
	svc, repo, b := setupCompetitionService(t)
	ctx := context.Background()
	first := testutil.CreateCompetition(t, repo, "First", models.StatusDraft)
	second := testutil.CreateCompetition(t, repo, "Second", models.StatusDraft)

	if _, err := svc.Start(ctx, admin, first); err != nil {
		t.Fatalf("Start(first) failed: %v", err)
	}
	c, err := svc.Start(ctx, admin, second)
	if err != nil {
		t.Fatalf("Start(second) failed: %v", err)
	}
	if c.Status != models.StatusLive || c.StartedAt == nil {
		t.Errorf("expected second live with a start time, got %+v", c)
	}

	prev, err := svc.Get(ctx, first)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if prev.Status != models.StatusEnded || prev.EndedAt == nil {
		t.Errorf("expected first ended, got %+v", prev)
	}

	live, err := svc.Live(ctx)
	if err != nil || live.ID != second {
		t.Errorf("expected second to be the live competition, got %+v (%v)", live, err)
	}

	// first started, first ended, second started
	if len(b.statuses) != 3 {
		t.Fatalf("expected 3 status broadcasts, got %+v", b.statuses)
	}
	if b.statuses[1].CompetitionID != first || b.statuses[1].Status != models.StatusEnded {
		t.Errorf("expected the ended broadcast second, got %+v", b.statuses[1])
	}
}

func TestCompetitionStart_Transitions(t *testing.T) {
	svc, repo, b := setupCompetitionService(t)
	ctx := context.Background()

	live := testutil.CreateCompetition(t, repo, "Live", models.StatusLive)
	c, err := svc.Start(ctx, admin, live)
	if err != nil || c.Status != models.StatusLive {
		t.Errorf("starting a live competition is a no-op, got %+v (%v)", c, err)
	}
	if len(b.statuses) != 0 {
		t.Errorf("a no-op start must not broadcast, got %+v", b.statuses)
	}

	ended := testutil.CreateCompetition(t, repo, "Ended", models.StatusEnded)
	if _, err := svc.Start(ctx, admin, ended); !stderrors.Is(err, services.ErrCompetitionEnded) {
		t.Errorf("expected ErrCompetitionEnded, got %v", err)
	}

	_, err = svc.Start(ctx, admin, 404)
	expectKind(t, err, errors.ErrNotFound)
}

func TestCompetitionStart_FailureKeepsPreviousLive(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	m := mock.NewRepository(repo)
	svc := services.NewCompetitionService(logger.New(), m)
	ctx := context.Background()
	live := testutil.CreateCompetition(t, repo, "Live", models.StatusLive)
	draft := testutil.CreateCompetition(t, repo, "Draft", models.StatusDraft)

	m.SetCompetitionStatusError = stderrors.New("write failed")
	_, err := svc.Start(ctx, admin, draft)
	expectKind(t, err, errors.ErrInternal)

	c, err := repo.GetLiveCompetition(ctx)
	if err != nil || c.ID != live {
		t.Errorf("expected the previous competition to stay live, got %+v (%v)", c, err)
	}
}

func TestCompetitionEnd(t *testing.T) {
	svc, repo, b := setupCompetitionService(t)
	ctx := context.Background()
	live := testutil.CreateCompetition(t, repo, "Live", models.StatusLive)
	draft := testutil.CreateCompetition(t, repo, "Draft", models.StatusDraft)

	c, err := svc.End(ctx, admin, live)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if c.Status != models.StatusEnded {
		t.Errorf("expected ended, got %s", c.Status)
	}
	if len(b.statuses) != 1 || b.statuses[0].Status != models.StatusEnded {
		t.Errorf("unexpected broadcasts: %+v", b.statuses)
	}

	_, err = svc.End(ctx, admin, draft)
	expectKind(t, err, errors.ErrConflict)
	_, err = svc.End(ctx, admin, live)
	expectKind(t, err, errors.ErrConflict)

	_, err = svc.Live(ctx)
	if !stderrors.Is(err, services.ErrNoLiveCompetition) {
		t.Errorf("expected ErrNoLiveCompetition, got %v", err)
	}
}

func TestCompetitionDelete_Cascades(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana", "Bea")
	svc := services.NewCompetitionService(logger.New(), repo)
	ctx := context.Background()
	score(t, scoring, meet.Entries[0], meet.Apparatus[0].ID, 8, 4, 0)
	if _, err := scoring.SubmitScore(ctx, admin, services.SubmitScoreInput{
		EntryID: meet.Entries[1], ApparatusID: meet.Apparatus[0].ID, DScore: 4, ExecutionScores: []float64{8, 8.5},
	}); err != nil {
		t.Fatalf("SubmitScore failed: %v", err)
	}

	if err := svc.Delete(ctx, admin, meet.CompetitionID); !stderrors.Is(err, services.ErrCompetitionIsLive) {
		t.Fatalf("expected ErrCompetitionIsLive, got %v", err)
	}
	if _, err := svc.End(ctx, admin, meet.CompetitionID); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if err := svc.Delete(ctx, admin, meet.CompetitionID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := svc.Get(ctx, meet.CompetitionID)
	expectKind(t, err, errors.ErrNotFound)
	if n := countEntries(t, repo, meet.CompetitionID); n != 0 {
		t.Errorf("expected entries removed, got %d", n)
	}
	if n := countScores(t, repo, meet.CompetitionID); n != 0 {
		t.Errorf("expected scores removed, got %d", n)
	}
	// gymnasts are not part of the cascade
	if _, err := repo.GetGymnast(ctx, meet.Gymnasts[0]); err != nil {
		t.Errorf("gymnast should survive: %v", err)
	}

	expectKind(t, svc.Delete(ctx, admin, meet.CompetitionID), errors.ErrNotFound)
}

func TestCompetitionDelete_RollsBackOnFailure(t *testing.T) {
	steps := []struct {
		name   string
		inject func(*mock.Repository)
	}{
		{"judge scores", func(m *mock.Repository) { m.DeleteJudgeScoresForEntriesError = stderrors.New("boom") }},
		{"scores", func(m *mock.Repository) { m.DeleteScoresForEntriesError = stderrors.New("boom") }},
		{"entries", func(m *mock.Repository) { m.DeleteEntriesError = stderrors.New("boom") }},
		{"competition", func(m *mock.Repository) { m.DeleteCompetitionError = stderrors.New("boom") }},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			scoring, repo, meet := newLiveMeet(t, "Ana")
			ctx := context.Background()
			if _, err := scoring.SubmitScore(ctx, admin, services.SubmitScoreInput{
				EntryID: meet.Entries[0], ApparatusID: meet.Apparatus[0].ID, DScore: 4, ExecutionScores: []float64{8, 9},
			}); err != nil {
				t.Fatalf("SubmitScore failed: %v", err)
			}
			if err := repo.SetCompetitionStatus(ctx, meet.CompetitionID, models.StatusEnded, time.Now()); err != nil {
				t.Fatalf("SetCompetitionStatus failed: %v", err)
			}

			m := mock.NewRepository(repo)
			step.inject(m)
			svc := services.NewCompetitionService(logger.New(), m)

			expectKind(t, svc.Delete(ctx, admin, meet.CompetitionID), errors.ErrConsistency)

			if _, err := repo.GetCompetition(ctx, meet.CompetitionID); err != nil {
				t.Errorf("competition should survive: %v", err)
			}
			if n := countEntries(t, repo, meet.CompetitionID); n != 1 {
				t.Errorf("expected 1 entry, got %d", n)
			}
			s, err := repo.GetScoreFor(ctx, meet.Entries[0], meet.Apparatus[0].ID)
			if err != nil {
				t.Fatalf("score should survive: %v", err)
			}
			if len(s.JudgeScores) != 2 {
				t.Errorf("expected 2 judge scores, got %d", len(s.JudgeScores))
			}
		})
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		year, month         int
		wantYear, wantMonth int
	}{
		{2026, 5, 2026, 5},
		{2026, 13, 2027, 1},
		{2026, 0, 2025, 12},
		{2026, 12, 2026, 12},
	}
	for _, tt := range tests {
		y, m := services.NormalizeMonth(tt.year, tt.month)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("NormalizeMonth(%d, %d) = %d, %d; want %d, %d", tt.year, tt.month, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestMonthWeeks(t *testing.T) {
	// June 2026 starts on a Monday and has 30 days
	weeks := services.MonthWeeks(2026, 6)
	if len(weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(weeks))
	}
	if weeks[0][0] != 1 || weeks[4][1] != 30 || weeks[4][2] != 0 {
		t.Errorf("unexpected grid: %v", weeks)
	}

	// May 2026 starts on a Friday
	weeks = services.MonthWeeks(2026, 5)
	if weeks[0][3] != 0 || weeks[0][4] != 1 {
		t.Errorf("expected May 1st on Friday, got %v", weeks[0])
	}
}

func TestCalendar(t *testing.T) {
	svc, _, _ := setupCompetitionService(t)
	ctx := context.Background()
	for _, in := range []services.CompetitionInput{
		{Name: "Spring Open", Address: "Hall", Date: "2026-05-09"},
		{Name: "Club Night", Address: "Gym", Date: "2026-05-09"},
		{Name: "June Cup", Address: "Hall", Date: "2026-06-01"},
		{Name: "Undated", Address: "Hall"},
	} {
		if _, err := svc.Create(ctx, admin, in); err != nil {
			t.Fatalf("Create(%s) failed: %v", in.Name, err)
		}
	}

	cal, err := svc.Calendar(ctx, 2026, 5)
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if cal.Total != 2 || len(cal.Competitions[9]) != 2 {
		t.Errorf("expected both May meets on the 9th, got %+v", cal.Competitions)
	}
	if cal.MonthName != "May" || cal.PrevMonth != 4 || cal.NextMonth != 6 {
		t.Errorf("unexpected navigation: %+v", cal)
	}

	cal, err = svc.Calendar(ctx, 2025, 13)
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if cal.Year != 2026 || cal.Month != 1 || cal.PrevYear != 2025 || cal.PrevMonth != 12 {
		t.Errorf("month 13 should wrap to January 2026, got %d-%d", cal.Year, cal.Month)
	}
}
