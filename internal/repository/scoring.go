package repository

import (
	"context"
	"database/sql"

	"github.com/abrezinsky/gymscore/internal/models"
)

// ==================== Apparatus Methods ====================

// ListApparatus returns the apparatus catalog in display order
func (r *Repository) ListApparatus(ctx context.Context) ([]models.Apparatus, error) {
	rows, err := r.query(ctx, `SELECT id, name, display_order FROM apparatus ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apparatus := []models.Apparatus{}
	for rows.Next() {
		var a models.Apparatus
		if err := rows.Scan(&a.ID, &a.Name, &a.DisplayOrder); err != nil {
			return nil, err
		}
		apparatus = append(apparatus, a)
	}
	return apparatus, rows.Err()
}

// GetApparatus retrieves one apparatus by ID
func (r *Repository) GetApparatus(ctx context.Context, id int) (*models.Apparatus, error) {
	var a models.Apparatus
	err := r.queryRow(ctx, `SELECT id, name, display_order FROM apparatus WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.DisplayOrder)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// CountApparatus returns the size of the catalog
func (r *Repository) CountApparatus(ctx context.Context) (int, error) {
	var n int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM apparatus`).Scan(&n)
	return n, err
}

// ==================== Score Methods ====================

// EnsureScore returns the score row for (entryID, apparatusID), creating a
// zeroed placeholder when none exists. The UNIQUE(entry_id, apparatus_id)
// constraint keeps concurrent creators to a single row.
func (r *Repository) EnsureScore(ctx context.Context, entryID, apparatusID int) (int, error) {
	if _, err := r.exec(ctx, `
		INSERT INTO scores (entry_id, apparatus_id, e_score, d_score, penalty, total)
		VALUES (?, ?, 0, 0, 0, 0)
		ON CONFLICT (entry_id, apparatus_id) DO NOTHING`,
		entryID, apparatusID); err != nil {
		return 0, err
	}

	var id int
	err := r.queryRow(ctx, `SELECT id FROM scores WHERE entry_id = ? AND apparatus_id = ?`, entryID, apparatusID).Scan(&id)
	if err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// UpdateScoreValues overwrites the components and total of a score
func (r *Repository) UpdateScoreValues(ctx context.Context, s *models.Score) error {
	res, err := r.exec(ctx, `
		UPDATE scores SET e_score = ?, d_score = ?, penalty = ?, total = ?
		WHERE id = ?`,
		s.EScore, s.DScore, s.Penalty, s.Total, s.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ReplaceJudgeScores deletes every judge score of scoreID and inserts judges
func (r *Repository) ReplaceJudgeScores(ctx context.Context, scoreID int, judges []models.JudgeScore) error {
	if _, err := r.exec(ctx, `DELETE FROM judge_scores WHERE score_id = ?`, scoreID); err != nil {
		return err
	}
	for _, js := range judges {
		if _, err := r.exec(ctx,
			`INSERT INTO judge_scores (score_id, judge_number, e_score) VALUES (?, ?, ?)`,
			scoreID, js.JudgeNumber, js.EScore); err != nil {
			return err
		}
	}
	return nil
}

// ListJudgeScores returns the judge scores of a score by judge number
func (r *Repository) ListJudgeScores(ctx context.Context, scoreID int) ([]models.JudgeScore, error) {
	rows, err := r.query(ctx, `
		SELECT id, score_id, judge_number, e_score
		FROM judge_scores
		WHERE score_id = ?
		ORDER BY judge_number`, scoreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var judges []models.JudgeScore
	for rows.Next() {
		var js models.JudgeScore
		if err := rows.Scan(&js.ID, &js.ScoreID, &js.JudgeNumber, &js.EScore); err != nil {
			return nil, err
		}
		judges = append(judges, js)
	}
	return judges, rows.Err()
}

const scoreColumns = `id, entry_id, apparatus_id, e_score, d_score, penalty, total`

func scanScore(row *sql.Row) (*models.Score, error) {
	var s models.Score
	if err := row.Scan(&s.ID, &s.EntryID, &s.ApparatusID, &s.EScore, &s.DScore, &s.Penalty, &s.Total); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// GetScore retrieves a score with its judge scores
func (r *Repository) GetScore(ctx context.Context, id int) (*models.Score, error) {
	s, err := scanScore(r.queryRow(ctx, `SELECT `+scoreColumns+` FROM scores WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if s.JudgeScores, err = r.ListJudgeScores(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// GetScoreFor retrieves the score of one routine with its judge scores
func (r *Repository) GetScoreFor(ctx context.Context, entryID, apparatusID int) (*models.Score, error) {
	s, err := scanScore(r.queryRow(ctx,
		`SELECT `+scoreColumns+` FROM scores WHERE entry_id = ? AND apparatus_id = ?`, entryID, apparatusID))
	if err != nil {
		return nil, err
	}
	if s.JudgeScores, err = r.ListJudgeScores(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteScore removes a score and its judge scores
func (r *Repository) DeleteScore(ctx context.Context, id int) error {
	if _, err := r.exec(ctx, `DELETE FROM judge_scores WHERE score_id = ?`, id); err != nil {
		return err
	}
	return r.deleteByID(ctx, `DELETE FROM scores WHERE id = ?`, id)
}

// DeleteJudgeScoresForEntries removes every judge score under the given entries
func (r *Repository) DeleteJudgeScoresForEntries(ctx context.Context, entryIDs []int) error {
	if len(entryIDs) == 0 {
		return nil
	}
	_, err := r.exec(ctx, `
		DELETE FROM judge_scores
		WHERE score_id IN (SELECT id FROM scores WHERE entry_id IN (`+placeholders(len(entryIDs))+`))`,
		intArgs(entryIDs)...)
	return err
}

// DeleteScoresForEntries removes every score under the given entries
func (r *Repository) DeleteScoresForEntries(ctx context.Context, entryIDs []int) error {
	if len(entryIDs) == 0 {
		return nil
	}
	_, err := r.exec(ctx, `DELETE FROM scores WHERE entry_id IN (`+placeholders(len(entryIDs))+`)`, intArgs(entryIDs)...)
	return err
}

// CountScoredApparatus returns how many distinct apparatus an entry has scores on
func (r *Repository) CountScoredApparatus(ctx context.Context, entryID int) (int, error) {
	var n int
	err := r.queryRow(ctx, `SELECT COUNT(DISTINCT apparatus_id) FROM scores WHERE entry_id = ?`, entryID).Scan(&n)
	return n, err
}

// ==================== Leaderboard Methods ====================

// AllAroundLeaderboard sums each gymnast's totals at level within a
// competition. Gymnasts without scores are omitted. Rows come back ordered
// by total descending, then gymnast ID; ranks are left for the caller.
func (r *Repository) AllAroundLeaderboard(ctx context.Context, competitionID int, level models.Level) ([]models.AllAroundRow, error) {
	rows, err := r.query(ctx, `
		SELECT g.id, g.name, c.name, g.level, e.id,
			SUM(s.total), SUM(s.e_score), SUM(s.d_score), SUM(s.penalty), COUNT(s.id)
		FROM entries e
		JOIN gymnasts g ON g.id = e.gymnast_id
		JOIN clubs c ON c.id = g.club_id
		JOIN scores s ON s.entry_id = e.id
		WHERE e.competition_id = ? AND g.level = ?
		GROUP BY g.id, g.name, c.name, g.level, e.id
		ORDER BY SUM(s.total) DESC, g.id ASC`,
		competitionID, string(level))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := []models.AllAroundRow{}
	for rows.Next() {
		var row models.AllAroundRow
		if err := rows.Scan(&row.GymnastID, &row.GymnastName, &row.ClubName, &row.Level, &row.EntryID,
			&row.Total, &row.EScore, &row.DScore, &row.Penalty, &row.ApparatusCount); err != nil {
			return nil, err
		}
		board = append(board, row)
	}
	return board, rows.Err()
}

// ApparatusLeaderboard returns each gymnast's score on one apparatus,
// ordered by total descending, then gymnast ID.
func (r *Repository) ApparatusLeaderboard(ctx context.Context, competitionID int, level models.Level, apparatusID int) ([]models.ApparatusRow, error) {
	rows, err := r.query(ctx, `
		SELECT g.id, g.name, c.name, g.level, e.id, s.id, s.e_score, s.d_score, s.penalty, s.total
		FROM scores s
		JOIN entries e ON e.id = s.entry_id
		JOIN gymnasts g ON g.id = e.gymnast_id
		JOIN clubs c ON c.id = g.club_id
		WHERE e.competition_id = ? AND g.level = ? AND s.apparatus_id = ?
		ORDER BY s.total DESC, g.id ASC`,
		competitionID, string(level), apparatusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := []models.ApparatusRow{}
	for rows.Next() {
		var row models.ApparatusRow
		if err := rows.Scan(&row.GymnastID, &row.GymnastName, &row.ClubName, &row.Level, &row.EntryID,
			&row.ScoreID, &row.EScore, &row.DScore, &row.Penalty, &row.Total); err != nil {
			return nil, err
		}
		board = append(board, row)
	}
	return board, rows.Err()
}

// EntryScoreCounts returns, per entry of a competition, the number of
// distinct apparatus scored. TotalCount and percentages are left unset.
func (r *Repository) EntryScoreCounts(ctx context.Context, competitionID int) ([]models.EntryProgress, error) {
	rows, err := r.query(ctx, `
		SELECT e.id, g.id, g.name, g.level, COUNT(DISTINCT s.apparatus_id)
		FROM entries e
		JOIN gymnasts g ON g.id = e.gymnast_id
		LEFT JOIN scores s ON s.entry_id = e.id
		WHERE e.competition_id = ?
		GROUP BY e.id, g.id, g.name, g.level
		ORDER BY g.name, e.id`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := []models.EntryProgress{}
	for rows.Next() {
		var p models.EntryProgress
		if err := rows.Scan(&p.EntryID, &p.GymnastID, &p.GymnastName, &p.Level, &p.ScoredCount); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// LevelsInCompetition returns the levels of gymnasts entered in a competition, in canonical order
func (r *Repository) LevelsInCompetition(ctx context.Context, competitionID int) ([]models.Level, error) {
	return r.levels(ctx, `
		SELECT DISTINCT g.level
		FROM entries e
		JOIN gymnasts g ON g.id = e.gymnast_id
		WHERE e.competition_id = ?`, competitionID)
}

// GymnastApparatusBest returns the gymnast's best total on each apparatus they have scored on
func (r *Repository) GymnastApparatusBest(ctx context.Context, gymnastID int) ([]models.ApparatusBest, error) {
	rows, err := r.query(ctx, `
		SELECT a.id, a.name, MAX(s.total)
		FROM scores s
		JOIN entries e ON e.id = s.entry_id
		JOIN apparatus a ON a.id = s.apparatus_id
		WHERE e.gymnast_id = ?
		GROUP BY a.id, a.name, a.display_order
		ORDER BY a.display_order`, gymnastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	best := []models.ApparatusBest{}
	for rows.Next() {
		var b models.ApparatusBest
		if err := rows.Scan(&b.ApparatusID, &b.ApparatusName, &b.Best); err != nil {
			return nil, err
		}
		best = append(best, b)
	}
	return best, rows.Err()
}

// GymnastHistory returns the gymnast's all-around total at every competition entered, latest first
func (r *Repository) GymnastHistory(ctx context.Context, gymnastID int) ([]models.CompetitionResult, error) {
	rows, err := r.query(ctx, `
		SELECT comp.id, comp.name, comp.date, COALESCE(SUM(s.total), 0)
		FROM entries e
		JOIN competitions comp ON comp.id = e.competition_id
		LEFT JOIN scores s ON s.entry_id = e.id
		WHERE e.gymnast_id = ?
		GROUP BY comp.id, comp.name, comp.date
		ORDER BY comp.date DESC, comp.id DESC`, gymnastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.CompetitionResult{}
	for rows.Next() {
		var cr models.CompetitionResult
		var date sql.NullString
		if err := rows.Scan(&cr.CompetitionID, &cr.CompetitionName, &date, &cr.Total); err != nil {
			return nil, err
		}
		cr.Date = date.String
		history = append(history, cr)
	}
	return history, rows.Err()
}
