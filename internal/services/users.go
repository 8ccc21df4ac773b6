package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// Account rules
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// UserServiceRepository defines the repository methods needed by UserService
type UserServiceRepository interface {
	repository.UserRepository
	GetGymnastByUser(ctx context.Context, userID int) (*models.Gymnast, error)
	GetGymnast(ctx context.Context, id int) (*models.Gymnast, error)
	UpdateGymnast(ctx context.Context, g *models.Gymnast) error
	repository.Transactor
}

// UserService manages accounts, roles and athlete applications
type UserService struct {
	log  logger.Logger
	repo UserServiceRepository
	cost int
	now  func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(log logger.Logger, repo UserServiceRepository) *UserService {
	return &UserService{log: log, repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
}

// ApplicationInput is a user's request to be registered as a gymnast
type ApplicationInput struct {
	ClubName        string `json:"club_name"`
	Level           string `json:"level"`
	YearsExperience int    `json:"years_experience"`
	CoachName       string `json:"coach_name"`
	Achievements    string `json:"achievements"`
}

// ProfileInput holds the bio fields an athlete may edit on their own profile
type ProfileInput struct {
	Age          *int   `json:"age"`
	Goals        string `json:"goals"`
	Achievements string `json:"achievements"`
	Injuries     string `json:"injuries"`
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Internal(err)
	}
	return string(hash), nil
}

func validateCredentials(username, password string) error {
	if len(strings.TrimSpace(username)) < MinUsernameLength {
		return errors.FieldValidation("username", "username must be at least 3 characters")
	}
	if len(password) < MinPasswordLength {
		return errors.FieldValidation("password", "password must be at least 6 characters")
	}
	return nil
}

// Register creates a plain user account
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.CreateUser(ctx, username, hash, models.RoleUser)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken.WithField("username")
		}
		return nil, internalError(err)
	}

	s.log.Info("User registered", "user_id", id, "username", username)
	return s.getUser(ctx, id)
}

// Authenticate checks a username and password
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, internalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("Failed login", "username", username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) getUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", id)
	}
	return user, nil
}

// List returns every account
func (s *UserService) List(ctx context.Context, p auth.Principal) ([]models.User, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return users, nil
}

// SetRole changes another user's role. Admins cannot change their own role.
func (s *UserService) SetRole(ctx context.Context, p auth.Principal, userID int, role models.Role) (*models.User, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errors.FieldValidation("role", "unknown role "+string(role))
	}
	if userID == p.UserID {
		return nil, ErrOwnRole
	}
	if err := s.repo.SetUserRole(ctx, userID, role); err != nil {
		return nil, lookupError(err, "user", userID)
	}
	s.log.Info("User role changed", "user_id", userID, "role", role, "by", p.Username)
	return s.getUser(ctx, userID)
}

// EnsureAdmin makes sure an admin account exists. An existing user of that
// name is promoted and keeps its password. Reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return false, nil
		}
		if err := s.repo.SetUserRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return false, internalError(err)
		}
		s.log.Info("User promoted to admin", "username", username)
		return false, nil
	case !stderrors.Is(err, repository.ErrNotFound):
		return false, internalError(err)
	}

	if err := validateCredentials(username, password); err != nil {
		return false, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	if _, err := s.repo.CreateUser(ctx, username, hash, models.RoleAdmin); err != nil {
		return false, internalError(err)
	}
	s.log.Info("Admin account created", "username", username)
	return true, nil
}

// ==================== Athlete Applications ====================

// Apply files an athlete application for the calling user
func (s *UserService) Apply(ctx context.Context, p auth.Principal, in ApplicationInput) (*models.AthleteApplication, error) {
	if err := auth.Require(p); err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return nil, ErrAdminApplication
	}
	if err := requireText("club_name", in.ClubName); err != nil {
		return nil, err
	}
	level, ok := models.ParseLevel(in.Level)
	if !ok {
		return nil, errors.FieldValidation("level", "unknown level "+strings.TrimSpace(in.Level))
	}
	if in.YearsExperience < 0 || in.YearsExperience > 80 {
		return nil, errors.FieldValidation("years_experience", "years_experience must be between 0 and 80")
	}

	if _, err := s.repo.GetGymnastByUser(ctx, p.UserID); err == nil {
		return nil, ErrAlreadyAthlete
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, internalError(err)
	}
	pending, err := s.repo.HasPendingApplication(ctx, p.UserID)
	if err != nil {
		return nil, internalError(err)
	}
	if pending {
		return nil, ErrPendingApplication
	}

	app := &models.AthleteApplication{
		UserID:          p.UserID,
		Username:        p.Username,
		ClubName:        strings.TrimSpace(in.ClubName),
		Level:           level,
		YearsExperience: in.YearsExperience,
		CoachName:       strings.TrimSpace(in.CoachName),
		Achievements:    strings.TrimSpace(in.Achievements),
		Status:          models.ApplicationPending,
	}
	id, err := s.repo.CreateApplication(ctx, app)
	if err != nil {
		return nil, internalError(err)
	}
	app.ID = id
	app.CreatedAt = s.now()

	s.log.Info("Athlete application submitted", "application_id", id, "user_id", p.UserID)
	return app, nil
}

// ListPending returns applications awaiting review
func (s *UserService) ListPending(ctx context.Context, p auth.Principal) ([]models.AthleteApplication, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	apps, err := s.repo.ListApplications(ctx, models.ApplicationPending)
	if err != nil {
		return nil, internalError(err)
	}
	return apps, nil
}

func pendingApplication(ctx context.Context, tx repository.FullRepository, id int) (*models.AthleteApplication, error) {
	app, err := tx.GetApplication(ctx, id)
	if err != nil {
		return nil, lookupError(err, "application", id)
	}
	if app.Status != models.ApplicationPending {
		return nil, ErrApplicationReviewed
	}
	return app, nil
}

// Approve registers the applicant as a gymnast, creating their club when it
// does not exist yet. Everything happens in one transaction.
func (s *UserService) Approve(ctx context.Context, p auth.Principal, id int) (*models.Gymnast, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	var gymnastID int
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		app, err := pendingApplication(ctx, tx, id)
		if err != nil {
			return err
		}

		var clubID int
		club, err := tx.GetClubByName(ctx, app.ClubName)
		switch {
		case err == nil:
			clubID = club.ID
		case stderrors.Is(err, repository.ErrNotFound):
			if clubID, err = tx.CreateClub(ctx, app.ClubName); err != nil {
				return err
			}
		default:
			return err
		}

		user, err := tx.GetUser(ctx, app.UserID)
		if err != nil {
			return lookupError(err, "user", app.UserID)
		}
		userID := user.ID
		gymnastID, err = tx.CreateGymnast(ctx, &models.Gymnast{
			Name:         user.Username,
			Level:        app.Level,
			ClubID:       clubID,
			Achievements: app.Achievements,
			UserID:       &userID,
		})
		if err != nil {
			return err
		}
		return tx.SetApplicationStatus(ctx, id, models.ApplicationApproved, s.now())
	})
	if err != nil {
		return nil, internalError(err)
	}

	s.log.Info("Athlete application approved", "application_id", id, "gymnast_id", gymnastID, "by", p.Username)
	g, err := s.repo.GetGymnast(ctx, gymnastID)
	if err != nil {
		return nil, lookupError(err, "gymnast", gymnastID)
	}
	return g, nil
}

// Reject closes an application without creating a gymnast
func (s *UserService) Reject(ctx context.Context, p auth.Principal, id int) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		if _, err := pendingApplication(ctx, tx, id); err != nil {
			return err
		}
		return tx.SetApplicationStatus(ctx, id, models.ApplicationRejected, s.now())
	})
	if err != nil {
		return internalError(err)
	}
	s.log.Info("Athlete application rejected", "application_id", id, "by", p.Username)
	return nil
}

// UpdateProfile lets an athlete edit the bio of their linked gymnast
func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, in ProfileInput) (*models.Gymnast, error) {
	if err := auth.Require(p); err != nil {
		return nil, err
	}
	if in.Age != nil && (*in.Age < 1 || *in.Age > 100) {
		return nil, errors.FieldValidation("age", "age must be between 1 and 100")
	}

	g, err := s.repo.GetGymnastByUser(ctx, p.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("no athlete profile is linked to this account")
		}
		return nil, internalError(err)
	}
	g.Age = in.Age
	g.Goals = strings.TrimSpace(in.Goals)
	g.Achievements = strings.TrimSpace(in.Achievements)
	g.Injuries = strings.TrimSpace(in.Injuries)
	if err := s.repo.UpdateGymnast(ctx, g); err != nil {
		return nil, internalError(err)
	}
	s.log.Info("Athlete profile updated", "gymnast_id", g.ID, "user_id", p.UserID)
	return g, nil
}
