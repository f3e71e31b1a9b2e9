package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitflow/screening-api/internal/models"
)

type SessionRepository interface {
	Create(session *models.ScreeningSession) error
	FindByID(id uuid.UUID) (*models.ScreeningSession, error)
	AppendRecord(record *models.ScreeningRecord) error
	FindRecords(sessionID uuid.UUID) ([]models.ScreeningRecord, error)
	UpdateStatus(id uuid.UUID, status models.SessionStatus) error
	Finalize(id uuid.UUID) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.ScreeningSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create screening session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(id uuid.UUID) (*models.ScreeningSession, error) {
	var session models.ScreeningSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("screening session not found")
		}
		return nil, fmt.Errorf("failed to find screening session: %w", err)
	}
	return &session, nil
}

// AppendRecord stores one scored record as soon as its batch finishes, so the
// snapshot endpoint can serve partial results while a run is in flight.
func (r *sessionRepository) AppendRecord(record *models.ScreeningRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to append screening record: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindRecords(sessionID uuid.UUID) ([]models.ScreeningRecord, error) {
	var records []models.ScreeningRecord
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find screening records: %w", err)
	}
	return records, nil
}

func (r *sessionRepository) UpdateStatus(id uuid.UUID, status models.SessionStatus) error {
	result := r.db.Model(&models.ScreeningSession{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("screening session not found")
	}
	return nil
}

// Finalize marks a session completed. Finalized sessions are never updated
// again; a superseding run gets its own row.
func (r *sessionRepository) Finalize(id uuid.UUID) error {
	result := r.db.Model(&models.ScreeningSession{}).
		Where("id = ? AND status = ?", id, models.SessionRunning).
		Updates(map[string]interface{}{
			"status":       models.SessionCompleted,
			"finalized_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to finalize session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("screening session not found or not running")
	}
	return nil
}
