package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/gymscore/internal/models"
)

// ==================== Club Methods ====================

// CreateClub inserts a club and returns its ID
func (r *Repository) CreateClub(ctx context.Context, name string) (int, error) {
	return r.insert(ctx, `INSERT INTO clubs (name) VALUES (?)`, name)
}

// GetClub retrieves a club by ID
func (r *Repository) GetClub(ctx context.Context, id int) (*models.Club, error) {
	var c models.Club
	err := r.queryRow(ctx, `SELECT id, name FROM clubs WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetClubByName retrieves a club by its exact name
func (r *Repository) GetClubByName(ctx context.Context, name string) (*models.Club, error) {
	var c models.Club
	err := r.queryRow(ctx, `SELECT id, name FROM clubs WHERE name = ?`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListClubs returns all clubs ordered by name
func (r *Repository) ListClubs(ctx context.Context) ([]models.Club, error) {
	rows, err := r.query(ctx, `SELECT id, name FROM clubs ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := []models.Club{}
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// DeleteClub removes a club. Returns ErrInUse while gymnasts reference it.
func (r *Repository) DeleteClub(ctx context.Context, id int) error {
	return r.deleteByID(ctx, "DELETE FROM clubs WHERE id = ?", id)
}

// ==================== Season Methods ====================

// GetOrCreateSeason returns the season for year, creating it when missing
func (r *Repository) GetOrCreateSeason(ctx context.Context, year int) (int, error) {
	if _, err := r.exec(ctx, `INSERT INTO seasons (year) VALUES (?) ON CONFLICT (year) DO NOTHING`, year); err != nil {
		return 0, err
	}
	var id int
	if err := r.queryRow(ctx, `SELECT id FROM seasons WHERE year = ?`, year).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// ListSeasons returns all seasons, newest first
func (r *Repository) ListSeasons(ctx context.Context) ([]models.Season, error) {
	rows, err := r.query(ctx, `SELECT id, year FROM seasons ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seasons := []models.Season{}
	for rows.Next() {
		var s models.Season
		if err := rows.Scan(&s.ID, &s.Year); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// ==================== Gymnast Methods ====================

const gymnastColumns = `g.id, g.name, g.level, g.club_id, c.name, g.age, g.goals, g.achievements, g.injuries, g.user_id`

func scanGymnast(row interface{ Scan(...any) error }) (*models.Gymnast, error) {
	var g models.Gymnast
	var age, userID sql.NullInt64
	var goals, achievements, injuries sql.NullString
	if err := row.Scan(&g.ID, &g.Name, &g.Level, &g.ClubID, &g.ClubName, &age, &goals, &achievements, &injuries, &userID); err != nil {
		return nil, err
	}
	g.Age = nullIntPtr(age)
	g.UserID = nullIntPtr(userID)
	g.Goals = goals.String
	g.Achievements = achievements.String
	g.Injuries = injuries.String
	return &g, nil
}

// CreateGymnast inserts a gymnast and returns its ID
func (r *Repository) CreateGymnast(ctx context.Context, g *models.Gymnast) (int, error) {
	return r.insert(ctx, `
		INSERT INTO gymnasts (name, level, club_id, age, goals, achievements, injuries, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, string(g.Level), g.ClubID, g.Age, g.Goals, g.Achievements, g.Injuries, g.UserID)
}

// UpdateGymnast overwrites a gymnast's editable fields
func (r *Repository) UpdateGymnast(ctx context.Context, g *models.Gymnast) error {
	res, err := r.exec(ctx, `
		UPDATE gymnasts SET name = ?, level = ?, club_id = ?, age = ?, goals = ?, achievements = ?, injuries = ?
		WHERE id = ?`,
		g.Name, string(g.Level), g.ClubID, g.Age, g.Goals, g.Achievements, g.Injuries, g.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetGymnast retrieves a gymnast with their club name
func (r *Repository) GetGymnast(ctx context.Context, id int) (*models.Gymnast, error) {
	g, err := scanGymnast(r.queryRow(ctx, `
		SELECT `+gymnastColumns+`
		FROM gymnasts g
		JOIN clubs c ON c.id = g.club_id
		WHERE g.id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// GetGymnastByUser retrieves the gymnast linked to a user account
func (r *Repository) GetGymnastByUser(ctx context.Context, userID int) (*models.Gymnast, error) {
	g, err := scanGymnast(r.queryRow(ctx, `
		SELECT `+gymnastColumns+`
		FROM gymnasts g
		JOIN clubs c ON c.id = g.club_id
		WHERE g.user_id = ?
		ORDER BY g.id
		LIMIT 1`, userID))
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// ListGymnasts returns all gymnasts, newest first
func (r *Repository) ListGymnasts(ctx context.Context) ([]models.Gymnast, error) {
	rows, err := r.query(ctx, `
		SELECT `+gymnastColumns+`
		FROM gymnasts g
		JOIN clubs c ON c.id = g.club_id
		ORDER BY g.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gymnasts := []models.Gymnast{}
	for rows.Next() {
		g, err := scanGymnast(rows)
		if err != nil {
			return nil, err
		}
		gymnasts = append(gymnasts, *g)
	}
	return gymnasts, rows.Err()
}

// DeleteGymnast removes a gymnast row. Entries must already be gone.
func (r *Repository) DeleteGymnast(ctx context.Context, id int) error {
	return r.deleteByID(ctx, "DELETE FROM gymnasts WHERE id = ?", id)
}

// LevelsInUse returns the distinct levels held by any gymnast, in canonical order
func (r *Repository) LevelsInUse(ctx context.Context) ([]models.Level, error) {
	return r.levels(ctx, `SELECT DISTINCT level FROM gymnasts`)
}

func (r *Repository) levels(ctx context.Context, query string, args ...any) ([]models.Level, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []models.Level{}
	for rows.Next() {
		var l models.Level
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	models.SortLevels(levels)
	return levels, nil
}

// ==================== Competition Methods ====================

const competitionColumns = `id, name, address, date, season_id, status, started_at, ended_at`

func scanCompetition(row interface{ Scan(...any) error }) (*models.Competition, error) {
	var c models.Competition
	var date sql.NullString
	var seasonID sql.NullInt64
	var startedAt, endedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &date, &seasonID, &c.Status, &startedAt, &endedAt); err != nil {
		return nil, err
	}
	if date.Valid && date.String != "" {
		if d, err := time.Parse(models.DateLayout, date.String); err == nil {
			c.Date = &d
		}
	}
	c.SeasonID = nullIntPtr(seasonID)
	c.StartedAt = nullTimePtr(startedAt)
	c.EndedAt = nullTimePtr(endedAt)
	return &c, nil
}

func dateArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(models.DateLayout)
}

// CreateCompetition inserts a competition and returns its ID
func (r *Repository) CreateCompetition(ctx context.Context, c *models.Competition) (int, error) {
	status := c.Status
	if status == "" {
		status = models.StatusDraft
	}
	return r.insert(ctx, `
		INSERT INTO competitions (name, address, date, season_id, status)
		VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Address, dateArg(c.Date), c.SeasonID, string(status))
}

// UpdateCompetition overwrites name, address, date and season
func (r *Repository) UpdateCompetition(ctx context.Context, c *models.Competition) error {
	res, err := r.exec(ctx, `
		UPDATE competitions SET name = ?, address = ?, date = ?, season_id = ?
		WHERE id = ?`,
		c.Name, c.Address, dateArg(c.Date), c.SeasonID, c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetCompetition retrieves a competition by ID
func (r *Repository) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	c, err := scanCompetition(r.queryRow(ctx, `SELECT `+competitionColumns+` FROM competitions WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetLiveCompetition retrieves the competition currently live
func (r *Repository) GetLiveCompetition(ctx context.Context) (*models.Competition, error) {
	c, err := scanCompetition(r.queryRow(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE status = ? ORDER BY id LIMIT 1`,
		string(models.StatusLive)))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// ListCompetitions returns competitions, latest date first
func (r *Repository) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	return r.listCompetitions(ctx, `
		SELECT `+competitionColumns+` FROM competitions
		ORDER BY CASE WHEN date IS NULL THEN 1 ELSE 0 END, date DESC, id DESC`)
}

// ListCompetitionsBetween returns competitions dated in [from, to), earliest first.
// Dates are YYYY-MM-DD strings, so lexical order is date order.
func (r *Repository) ListCompetitionsBetween(ctx context.Context, from, to time.Time) ([]models.Competition, error) {
	return r.listCompetitions(ctx, `
		SELECT `+competitionColumns+` FROM competitions
		WHERE date >= ? AND date < ?
		ORDER BY date, id`,
		from.Format(models.DateLayout), to.Format(models.DateLayout))
}

func (r *Repository) listCompetitions(ctx context.Context, query string, args ...any) ([]models.Competition, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := []models.Competition{}
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		competitions = append(competitions, *c)
	}
	return competitions, rows.Err()
}

// SetCompetitionStatus moves a competition to status, stamping started_at
// for live and ended_at for ended.
func (r *Repository) SetCompetitionStatus(ctx context.Context, id int, status models.CompetitionStatus, at time.Time) error {
	var (
		res sql.Result
		err error
	)
	switch status {
	case models.StatusLive:
		res, err = r.exec(ctx, `UPDATE competitions SET status = ?, started_at = ?, ended_at = NULL WHERE id = ?`,
			string(status), at.UTC(), id)
	case models.StatusEnded:
		res, err = r.exec(ctx, `UPDATE competitions SET status = ?, ended_at = ? WHERE id = ?`,
			string(status), at.UTC(), id)
	default:
		res, err = r.exec(ctx, `UPDATE competitions SET status = ?, started_at = NULL, ended_at = NULL WHERE id = ?`,
			string(status), id)
	}
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// EndLiveCompetitions ends every live competition other than exceptID and
// returns the IDs it ended.
func (r *Repository) EndLiveCompetitions(ctx context.Context, exceptID int, at time.Time) ([]int, error) {
	rows, err := r.query(ctx, `SELECT id FROM competitions WHERE status = ? AND id <> ?`, string(models.StatusLive), exceptID)
	if err != nil {
		return nil, err
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := r.SetCompetitionStatus(ctx, id, models.StatusEnded, at); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// DeleteCompetition removes a competition row. Entries must already be gone.
func (r *Repository) DeleteCompetition(ctx context.Context, id int) error {
	return r.deleteByID(ctx, "DELETE FROM competitions WHERE id = ?", id)
}

// ==================== Entry Methods ====================

// CreateEntry registers a gymnast for a competition.
// Returns ErrDuplicate when the gymnast is already entered.
func (r *Repository) CreateEntry(ctx context.Context, competitionID, gymnastID int) (int, error) {
	return r.insert(ctx, `INSERT INTO entries (competition_id, gymnast_id) VALUES (?, ?)`, competitionID, gymnastID)
}

// GetEntry retrieves an entry by ID
func (r *Repository) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	var e models.Entry
	err := r.queryRow(ctx, `SELECT id, competition_id, gymnast_id FROM entries WHERE id = ?`, id).
		Scan(&e.ID, &e.CompetitionID, &e.GymnastID)
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// GetEntryDetail retrieves an entry joined with gymnast, club and competition
func (r *Repository) GetEntryDetail(ctx context.Context, id int) (*models.EntryDetail, error) {
	rows, err := r.query(ctx, entryDetailQuery+` WHERE e.id = ?`, id)
	if err != nil {
		return nil, err
	}
	entries, err := scanEntryDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

const entryDetailQuery = `
	SELECT e.id, e.competition_id, e.gymnast_id, g.name, g.level, c.name, comp.name
	FROM entries e
	JOIN gymnasts g ON g.id = e.gymnast_id
	JOIN clubs c ON c.id = g.club_id
	JOIN competitions comp ON comp.id = e.competition_id`

// ListEntries returns entries joined with their gymnast and competition.
// A nil competitionID lists every entry.
func (r *Repository) ListEntries(ctx context.Context, competitionID *int) ([]models.EntryDetail, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if competitionID != nil {
		rows, err = r.query(ctx, entryDetailQuery+` WHERE e.competition_id = ? ORDER BY g.name, e.id`, *competitionID)
	} else {
		rows, err = r.query(ctx, entryDetailQuery+` ORDER BY e.id DESC`)
	}
	if err != nil {
		return nil, err
	}
	return scanEntryDetails(rows)
}

func scanEntryDetails(rows *sql.Rows) ([]models.EntryDetail, error) {
	defer rows.Close()

	entries := []models.EntryDetail{}
	for rows.Next() {
		var e models.EntryDetail
		if err := rows.Scan(&e.ID, &e.CompetitionID, &e.GymnastID, &e.GymnastName, &e.Level, &e.ClubName, &e.CompetitionName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EntryFilter selects entries by competition and/or gymnast
type EntryFilter struct {
	CompetitionID *int
	GymnastID     *int
}

// ListEntryIDs returns the IDs of entries matching filter
func (r *Repository) ListEntryIDs(ctx context.Context, filter EntryFilter) ([]int, error) {
	query := `SELECT id FROM entries WHERE 1 = 1`
	var args []any
	if filter.CompetitionID != nil {
		query += ` AND competition_id = ?`
		args = append(args, *filter.CompetitionID)
	}
	if filter.GymnastID != nil {
		query += ` AND gymnast_id = ?`
		args = append(args, *filter.GymnastID)
	}
	rows, err := r.query(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// DeleteEntries removes entry rows. Their scores must already be gone.
func (r *Repository) DeleteEntries(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.exec(ctx, `DELETE FROM entries WHERE id IN (`+placeholders(len(ids))+`)`, intArgs(ids)...)
	return err
}

// ==================== Helpers ====================

func (r *Repository) deleteByID(ctx context.Context, query string, id int) error {
	res, err := r.exec(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIDs(rows *sql.Rows) ([]int, error) {
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
