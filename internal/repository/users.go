package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/gymscore/internal/models"
)

// ==================== User Methods ====================

// CreateUser inserts a user. Returns ErrDuplicate when the username is taken.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (int, error) {
	return r.insert(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, string(role), time.Now().UTC())
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.queryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.queryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`, username))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// ListUsers returns all users ordered by username
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.query(ctx, `SELECT id, username, password_hash, role, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetUserRole changes a user's role
func (r *Repository) SetUserRole(ctx context.Context, id int, role models.Role) error {
	res, err := r.exec(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetUserPassword replaces a user's password hash
func (r *Repository) SetUserPassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ==================== Athlete Application Methods ====================

// CreateApplication inserts a pending athlete application
func (r *Repository) CreateApplication(ctx context.Context, app *models.AthleteApplication) (int, error) {
	return r.insert(ctx, `
		INSERT INTO athlete_applications (user_id, club_name, level, years_experience, coach_name, achievements, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.UserID, app.ClubName, string(app.Level), app.YearsExperience, app.CoachName, app.Achievements,
		string(models.ApplicationPending), time.Now().UTC())
}

const applicationQuery = `
	SELECT a.id, a.user_id, u.username, a.club_name, a.level, a.years_experience,
		a.coach_name, a.achievements, a.status, a.created_at, a.reviewed_at
	FROM athlete_applications a
	JOIN users u ON u.id = a.user_id`

func scanApplication(row interface{ Scan(...any) error }) (*models.AthleteApplication, error) {
	var app models.AthleteApplication
	var coach, achievements sql.NullString
	var reviewedAt sql.NullTime
	if err := row.Scan(&app.ID, &app.UserID, &app.Username, &app.ClubName, &app.Level, &app.YearsExperience,
		&coach, &achievements, &app.Status, &app.CreatedAt, &reviewedAt); err != nil {
		return nil, err
	}
	app.CoachName = coach.String
	app.Achievements = achievements.String
	app.ReviewedAt = nullTimePtr(reviewedAt)
	return &app, nil
}

// GetApplication retrieves an application by ID
func (r *Repository) GetApplication(ctx context.Context, id int) (*models.AthleteApplication, error) {
	app, err := scanApplication(r.queryRow(ctx, applicationQuery+` WHERE a.id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return app, nil
}

// ListApplications returns applications with the given status, oldest first
func (r *Repository) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]models.AthleteApplication, error) {
	rows, err := r.query(ctx, applicationQuery+` WHERE a.status = ? ORDER BY a.created_at, a.id`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.AthleteApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// HasPendingApplication reports whether the user has an application awaiting review
func (r *Repository) HasPendingApplication(ctx context.Context, userID int) (bool, error) {
	var n int
	err := r.queryRow(ctx,
		`SELECT COUNT(*) FROM athlete_applications WHERE user_id = ? AND status = ?`,
		userID, string(models.ApplicationPending)).Scan(&n)
	return n > 0, err
}

// SetApplicationStatus records a review decision
func (r *Repository) SetApplicationStatus(ctx context.Context, id int, status models.ApplicationStatus, at time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE athlete_applications SET status = ?, reviewed_at = ? WHERE id = ?`,
		string(status), at.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
