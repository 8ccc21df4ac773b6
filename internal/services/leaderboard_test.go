package services_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/testutil"
)

func TestRankAllAround_TiesShareRank(t *testing.T) {
	rows := []models.AllAroundRow{
		{GymnastID: 7, Total: 50.5},
		{GymnastID: 3, Total: 52.0},
		{GymnastID: 2, Total: 50.5},
		{GymnastID: 9, Total: 49.0},
	}
	services.RankAllAround(rows)

	var gotIDs, gotRanks []int
	for _, r := range rows {
		gotIDs = append(gotIDs, r.GymnastID)
		gotRanks = append(gotRanks, r.Rank)
	}
	if want := []int{3, 2, 7, 9}; !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("order = %v, want %v", gotIDs, want)
	}
	if want := []int{1, 2, 2, 4}; !reflect.DeepEqual(gotRanks, want) {
		t.Errorf("ranks = %v, want %v", gotRanks, want)
	}
}

func TestRankApparatus_FloatNoiseIsATie(t *testing.T) {
	rows := []models.ApparatusRow{
		{GymnastID: 2, Total: 0.1 + 0.2},
		{GymnastID: 1, Total: 0.3},
	}
	services.RankApparatus(rows)

	if rows[0].GymnastID != 1 || rows[0].Rank != 1 || rows[1].Rank != 1 {
		t.Errorf("expected a tie ordered by gymnast ID, got %+v", rows)
	}
}

func TestAllAroundAndApparatusBoards(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana", "Bea", "Cleo", "Dana")
	svc := services.NewLeaderboardService(logger.New(), repo)
	ctx := context.Background()
	ana, bea, cleo := meet.Entries[0], meet.Entries[1], meet.Entries[2]
	floor, horse := meet.Apparatus[0].ID, meet.Apparatus[1].ID

	score(t, scoring, ana, floor, 8, 4, 0)
	score(t, scoring, ana, horse, 8, 4, 0)
	score(t, scoring, bea, floor, 9, 5, 0)
	score(t, scoring, bea, horse, 6.5, 4, 0.5)
	score(t, scoring, cleo, floor, 8, 3, 0)

	// a different level in the same meet stays off the Level 4 boards
	other := testutil.CreateGymnast(t, repo, "Eve", models.Level5, meet.ClubID)
	score(t, scoring, testutil.CreateEntry(t, repo, meet.CompetitionID, other), floor, 9.9, 6, 0)

	aa, err := svc.AllAround(ctx, meet.CompetitionID, models.Level4)
	if err != nil {
		t.Fatalf("AllAround failed: %v", err)
	}
	if len(aa) != 3 {
		t.Fatalf("expected 3 ranked gymnasts (unscored omitted), got %d: %+v", len(aa), aa)
	}
	want := []struct {
		gymnast int
		rank    int
		total   float64
		count   int
	}{
		{meet.Gymnasts[0], 1, 24, 2},
		{meet.Gymnasts[1], 1, 24, 2},
		{meet.Gymnasts[2], 3, 11, 1},
	}
	for i, w := range want {
		r := aa[i]
		if r.GymnastID != w.gymnast || r.Rank != w.rank || !almostEqual(r.Total, w.total) || r.ApparatusCount != w.count {
			t.Errorf("row %d = %+v, want gymnast %d rank %d total %v count %d", i, r, w.gymnast, w.rank, w.total, w.count)
		}
	}
	if !almostEqual(aa[1].Penalty, 0.5) || !almostEqual(aa[1].DScore, 9) {
		t.Errorf("expected summed components on Bea's row, got %+v", aa[1])
	}

	board, err := svc.Apparatus(ctx, meet.CompetitionID, models.Level4, floor)
	if err != nil {
		t.Fatalf("Apparatus failed: %v", err)
	}
	var order []int
	for _, r := range board {
		order = append(order, r.GymnastID)
	}
	if wantOrder := []int{meet.Gymnasts[1], meet.Gymnasts[0], meet.Gymnasts[2]}; !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("floor order = %v, want %v", order, wantOrder)
	}
	if board[0].Rank != 1 || board[2].Rank != 3 {
		t.Errorf("unexpected floor ranks: %+v", board)
	}
}

func TestProgress(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana", "Bea", "Cleo")
	svc := services.NewLeaderboardService(logger.New(), repo)
	if len(meet.Apparatus) != 6 {
		t.Fatalf("expected six seeded apparatus, got %d", len(meet.Apparatus))
	}

	for _, entry := range meet.Entries[:2] {
		for _, a := range meet.Apparatus {
			score(t, scoring, entry, a.ID, 8, 4, 0)
		}
	}
	for _, a := range meet.Apparatus[:4] {
		score(t, scoring, meet.Entries[2], a.ID, 8, 4, 0)
	}

	p, err := svc.Progress(context.Background(), meet.CompetitionID)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if p.TotalGymnasts != 3 || p.FullyScored != 2 || p.IsComplete {
		t.Errorf("unexpected totals: %+v", p)
	}
	if !almostEqual(p.Percentage, 66.7) {
		t.Errorf("expected 66.7%%, got %v", p.Percentage)
	}
	for _, e := range p.Entries {
		if e.EntryID != meet.Entries[2] {
			continue
		}
		if e.ScoredCount != 4 || e.TotalCount != 6 || e.IsComplete || !almostEqual(e.Percentage, 66.7) {
			t.Errorf("unexpected partial entry: %+v", e)
		}
	}
}

func TestProgress_UnknownCompetition(t *testing.T) {
	svc := services.NewLeaderboardService(logger.New(), testutil.NewTestRepository(t))
	_, err := svc.Progress(context.Background(), 404)
	expectKind(t, err, errors.ErrNotFound)
}

func TestBuildProgress_EmptyCases(t *testing.T) {
	p := services.BuildProgress(1, nil, 6)
	if p.Entries == nil || p.Percentage != 0 || p.IsComplete {
		t.Errorf("empty competition: %+v", p)
	}

	p = services.BuildProgress(1, []models.EntryProgress{{EntryID: 1, ScoredCount: 0}}, 0)
	if p.Entries[0].Percentage != 0 || p.Entries[0].IsComplete {
		t.Errorf("empty catalog must never be complete: %+v", p.Entries[0])
	}
	if p.Percentage != 0 {
		t.Errorf("expected 0%%, got %v", p.Percentage)
	}
}

func TestLiveBoard_NoLiveCompetition(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	testutil.CreateCompetition(t, repo, "Draft Meet", models.StatusDraft)
	svc := services.NewLeaderboardService(logger.New(), repo)

	board, err := svc.LiveBoard(context.Background(), models.Level4, 0)
	if err != nil {
		t.Fatalf("LiveBoard failed: %v", err)
	}
	if !board.NoLiveCompetition || board.Competition != nil {
		t.Errorf("expected the no-live state, got %+v", board)
	}
}

func TestLiveBoard(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana", "Bea")
	svc := services.NewLeaderboardService(logger.New(), repo)
	ctx := context.Background()

	for _, level := range []models.Level{models.JuniorInternational, models.Level2} {
		g := testutil.CreateGymnast(t, repo, "Extra "+string(level), level, meet.ClubID)
		testutil.CreateEntry(t, repo, meet.CompetitionID, g)
	}
	score(t, scoring, meet.Entries[0], meet.Apparatus[0].ID, 8, 4, 0)
	score(t, scoring, meet.Entries[1], meet.Apparatus[0].ID, 9, 4, 0)

	board, err := svc.LiveBoard(ctx, "", 0)
	if err != nil {
		t.Fatalf("LiveBoard failed: %v", err)
	}
	if board.NoLiveCompetition || board.Competition == nil || board.Competition.ID != meet.CompetitionID {
		t.Fatalf("expected the live competition, got %+v", board)
	}
	wantLevels := []models.Level{models.Level2, models.Level4, models.JuniorInternational}
	if !reflect.DeepEqual(board.Levels, wantLevels) {
		t.Errorf("levels = %v, want %v", board.Levels, wantLevels)
	}
	if len(board.Apparatus) != 6 {
		t.Errorf("expected the apparatus catalog, got %d", len(board.Apparatus))
	}
	if board.AllAround != nil || board.ApparatusBoard != nil {
		t.Error("no board should be built until a level is selected")
	}
	if board.Progress == nil || board.Progress.TotalGymnasts != 4 {
		t.Errorf("unexpected progress: %+v", board.Progress)
	}

	board, err = svc.LiveBoard(ctx, models.Level4, 0)
	if err != nil {
		t.Fatalf("LiveBoard failed: %v", err)
	}
	if len(board.AllAround) != 2 || board.AllAround[0].GymnastID != meet.Gymnasts[1] {
		t.Errorf("unexpected all-around board: %+v", board.AllAround)
	}

	board, err = svc.LiveBoard(ctx, models.Level4, meet.Apparatus[0].ID)
	if err != nil {
		t.Fatalf("LiveBoard failed: %v", err)
	}
	if len(board.ApparatusBoard) != 2 || board.AllAround != nil {
		t.Errorf("expected only the apparatus board, got %+v", board)
	}
}

func TestGymnastProfile(t *testing.T) {
	scoring, repo, meet := newLiveMeet(t, "Ana")
	svc := services.NewLeaderboardService(logger.New(), repo)

	score(t, scoring, meet.Entries[0], meet.Apparatus[0].ID, 8, 4, 0)
	score(t, scoring, meet.Entries[0], meet.Apparatus[1].ID, 7.5, 4, 0.3)

	profile, err := svc.GymnastProfile(context.Background(), meet.Gymnasts[0])
	if err != nil {
		t.Fatalf("GymnastProfile failed: %v", err)
	}
	if profile.Gymnast.Name != "Ana" {
		t.Errorf("expected Ana, got %q", profile.Gymnast.Name)
	}
	if len(profile.ApparatusBest) != 2 {
		t.Errorf("expected bests on 2 apparatus, got %d", len(profile.ApparatusBest))
	}
	if !almostEqual(profile.BestAllAround, 23.2) {
		t.Errorf("expected best all-around 23.2, got %v", profile.BestAllAround)
	}
	if len(profile.History) != 1 || !almostEqual(profile.History[0].Total, 23.2) {
		t.Errorf("unexpected history: %+v", profile.History)
	}

	_, err = svc.GymnastProfile(context.Background(), 404)
	expectKind(t, err, errors.ErrNotFound)
}
