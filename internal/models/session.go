package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionRunning    SessionStatus = "running"
	SessionCompleted  SessionStatus = "completed"
	SessionSuperseded SessionStatus = "superseded"
)

// ScreeningSession is one end-to-end screening run of a candidate set against
// a role. Once completed it is never mutated; a new run supersedes it.
type ScreeningSession struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RoleID        uuid.UUID     `gorm:"type:uuid;not null" json:"role_id"`
	Status        SessionStatus `gorm:"not null;default:'running'" json:"status"`
	DocumentCount int           `gorm:"not null" json:"document_count"`
	CreatedAt     time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	FinalizedAt   *time.Time    `gorm:"type:timestamp" json:"finalized_at,omitempty"`

	// Relations
	Role    Role              `gorm:"foreignKey:RoleID" json:"-"`
	Records []ScreeningRecord `gorm:"foreignKey:SessionID" json:"-"`
}

func (ScreeningSession) TableName() string {
	return "screening_sessions"
}

// ScreeningRecord is the scored result for one (role, candidate) pair. It is
// either a success variant with every AI-derived field populated, or a
// failure variant with zeroed scores and a diagnostic in the feedback field.
// Both variants share this shape so consumers never branch on success.
type ScreeningRecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID          uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	DocumentID         uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	CandidateName      string    `gorm:"type:text" json:"candidate_name"`
	Email              string    `gorm:"type:text" json:"email"`
	MatchScore         int       `gorm:"not null" json:"match_score"`
	CompatibilityScore int       `gorm:"not null" json:"compatibility_score"`
	KeySkills          string    `gorm:"type:text" json:"key_skills"`
	Feedback           string    `gorm:"type:text" json:"feedback"`
	SourceFileName     string    `gorm:"type:text" json:"source_file_name"`
	Failed             bool      `gorm:"not null;default:false" json:"failed"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ScreeningRecord) TableName() string {
	return "screening_records"
}
