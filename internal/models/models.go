package models

import "time"

// CompetitionStatus is the lifecycle state of a competition
type CompetitionStatus string

const (
	StatusDraft CompetitionStatus = "draft"
	StatusLive  CompetitionStatus = "live"
	StatusEnded CompetitionStatus = "ended"
)

// Valid reports whether s is a known status
func (s CompetitionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusEnded:
		return true
	}
	return false
}

// Role is a user's authorization role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleJudge Role = "judge"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleJudge, RoleUser:
		return true
	}
	return false
}

// ApplicationStatus is the review state of an athlete application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Club represents a gymnastics club
type Club struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Season groups competitions by calendar year
type Season struct {
	ID   int `json:"id"`
	Year int `json:"year"`
}

// Gymnast represents an athlete. ClubName is filled by joins.
type Gymnast struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Level        Level  `json:"level"`
	ClubID       int    `json:"club_id"`
	ClubName     string `json:"club_name,omitempty"`
	Age          *int   `json:"age,omitempty"`
	Goals        string `json:"goals,omitempty"`
	Achievements string `json:"achievements,omitempty"`
	Injuries     string `json:"injuries,omitempty"`
	UserID       *int   `json:"user_id,omitempty"`
}

// Competition represents a meet
type Competition struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	Date      *time.Time        `json:"date,omitempty"`
	SeasonID  *int              `json:"season_id,omitempty"`
	Status    CompetitionStatus `json:"status"`
	StartedAt *time.Time        `json:"started_at,omitempty"`
	EndedAt   *time.Time        `json:"ended_at,omitempty"`
}

// DateString formats the competition date as YYYY-MM-DD, or "" when unset
func (c Competition) DateString() string {
	if c.Date == nil {
		return ""
	}
	return c.Date.Format(DateLayout)
}

// DateLayout is the wire and storage format of competition dates
const DateLayout = "2006-01-02"

// Entry links a gymnast to a competition
type Entry struct {
	ID            int `json:"id"`
	CompetitionID int `json:"competition_id"`
	GymnastID     int `json:"gymnast_id"`
}

// EntryDetail is an entry joined with its gymnast, club and competition
type EntryDetail struct {
	Entry
	GymnastName     string `json:"gymnast_name"`
	Level           Level  `json:"level"`
	ClubName        string `json:"club_name"`
	CompetitionName string `json:"competition_name"`
}

// Apparatus is a judged event
type Apparatus struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// DefaultApparatus is the seeded catalog in display order
var DefaultApparatus = []string{
	"Floor",
	"Pommel Horse",
	"Still Rings",
	"Vault",
	"Parallel Bars",
	"Horizontal Bar",
}

// Score is the finalized record for one routine (entry x apparatus)
type Score struct {
	ID          int          `json:"id"`
	EntryID     int          `json:"entry_id"`
	ApparatusID int          `json:"apparatus_id"`
	EScore      float64      `json:"e_score"`
	DScore      float64      `json:"d_score"`
	Penalty     float64      `json:"penalty"`
	Total       float64      `json:"total"`
	JudgeScores []JudgeScore `json:"judge_scores,omitempty"`
}

// JudgeScore is one judge's raw execution mark
type JudgeScore struct {
	ID          int     `json:"id"`
	ScoreID     int     `json:"score_id"`
	JudgeNumber int     `json:"judge_number"`
	EScore      float64 `json:"e_score"`
}

// User is an account that can log in
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// AthleteApplication is a user's request to be registered as a gymnast
type AthleteApplication struct {
	ID              int               `json:"id"`
	UserID          int               `json:"user_id"`
	Username        string            `json:"username,omitempty"`
	ClubName        string            `json:"club_name"`
	Level           Level             `json:"level"`
	YearsExperience int               `json:"years_experience"`
	CoachName       string            `json:"coach_name,omitempty"`
	Achievements    string            `json:"achievements,omitempty"`
	Status          ApplicationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket message types
const (
	MessageScoreSubmitted    = "score_submitted"
	MessageCompetitionStatus = "competition_status"
	MessageLiveSnapshot      = "live_snapshot"
)

// ScoreSubmittedPayload is broadcast after a score is committed
type ScoreSubmittedPayload struct {
	CompetitionID int     `json:"competition_id"`
	EntryID       int     `json:"entry_id"`
	ApparatusID   int     `json:"apparatus_id"`
	Total         float64 `json:"total"`
	Level         Level   `json:"level"`
}

// CompetitionStatusPayload is broadcast on competition state transitions
type CompetitionStatusPayload struct {
	CompetitionID int               `json:"competition_id"`
	Name          string            `json:"name"`
	Status        CompetitionStatus `json:"status"`
}
