package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a job-role description candidates are screened against. Read-only
// input to scoring once created.
type Role struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title          string    `gorm:"type:text;not null" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	SourceDocument string    `gorm:"type:text" json:"source_document"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}
