package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitflow/screening-api/internal/models"
	"recruitflow/screening-api/internal/repositories"
)

// ScreeningManager owns the consumer side of a screening run: it creates the
// session, drains the record stream under the cancellation guard, persists
// records as they arrive and finalizes the session when the stream ends.
type ScreeningManager struct {
	orchestrator *Orchestrator
	sessionRepo  repositories.SessionRepository
	guard        *SessionGuard
	logger       *zap.Logger
}

func NewScreeningManager(
	orchestrator *Orchestrator,
	sessionRepo repositories.SessionRepository,
	logger *zap.Logger,
) *ScreeningManager {
	return &ScreeningManager{
		orchestrator: orchestrator,
		sessionRepo:  sessionRepo,
		guard:        NewSessionGuard(),
		logger:       logger,
	}
}

// Start launches a screening run. Configuration problems (empty role, no
// documents, bad caps) are returned immediately and no session is created.
// Starting a run supersedes any run still in flight: its remaining records
// are discarded, never merged.
func (m *ScreeningManager) Start(role models.Role, docs []models.Document) (*models.ScreeningSession, error) {
	// The run deliberately outlives the request that started it: once
	// admitted, every batch runs to completion even if nobody is listening.
	stream, err := m.orchestrator.Screen(context.Background(), role, docs)
	if err != nil {
		return nil, fmt.Errorf("screening rejected: %w", err)
	}

	session := &models.ScreeningSession{
		ID:            uuid.New(),
		RoleID:        role.ID,
		Status:        models.SessionRunning,
		DocumentCount: len(docs),
		CreatedAt:     time.Now(),
	}
	if err := m.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	token := m.guard.Begin()
	go m.consume(token, session.ID, stream)

	return session, nil
}

// consume drains the stream to exhaustion even after the session went stale,
// so every scoring task's outcome is observed and the producer never blocks.
func (m *ScreeningManager) consume(token int64, sessionID uuid.UUID, stream <-chan models.ScreeningRecord) {
	scored := 0
	for record := range stream {
		if !m.guard.Active(token) {
			continue
		}

		record.SessionID = sessionID
		if err := m.sessionRepo.AppendRecord(&record); err != nil {
			m.logger.Error("failed to persist screening record",
				zap.String("session_id", sessionID.String()),
				zap.String("document_id", record.DocumentID.String()),
				zap.Error(err),
			)
			continue
		}
		scored++
	}

	if !m.guard.Active(token) {
		m.logger.Info("screening session superseded",
			zap.String("session_id", sessionID.String()),
			zap.Int("records_kept", scored),
		)
		if err := m.sessionRepo.UpdateStatus(sessionID, models.SessionSuperseded); err != nil {
			m.logger.Error("failed to mark session superseded",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		}
		return
	}

	if err := m.sessionRepo.Finalize(sessionID); err != nil {
		m.logger.Error("failed to finalize screening session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return
	}

	m.logger.Info("screening session completed",
		zap.String("session_id", sessionID.String()),
		zap.Int("records", scored),
	)
}

// Snapshot returns the session with its records ranked by match score. For a
// running session this is the current partial standing; for a completed one
// it is the final, stable order.
func (m *ScreeningManager) Snapshot(sessionID uuid.UUID) (*models.ScreeningSession, []models.ScreeningRecord, error) {
	session, err := m.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, nil, err
	}

	records, err := m.sessionRepo.FindRecords(sessionID)
	if err != nil {
		return nil, nil, err
	}

	return session, RankRecords(records), nil
}
