package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// sessionService persists login sessions.
type sessionService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionService creates a new SessionServicer whose sessions live for ttl.
func NewSessionService(db *gorm.DB, ttl time.Duration) SessionServicer {
	return &sessionService{db: db, ttl: ttl, now: time.Now}
}

// CreateSession starts a session for userID.
func (s *sessionService) CreateSession(userID string) (*models.Session, error) {
	session := &models.Session{
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.db.Omit(clause.Associations).Create(session).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return session, nil
}

// GetSession returns a live session. Missing and expired sessions are
// reported as ErrUnauthorized, and expired rows are removed.
func (s *sessionService) GetSession(sessionID string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Session not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	if session.Expired(s.now()) {
		if err := s.DeleteSession(session.ID); err != nil {
			logger.Get().Warnw("failed to remove expired session", "session_id", session.ID, "error", err)
		}
		return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Session expired")
	}
	return &session, nil
}

// DeleteSession ends a session. Deleting an unknown session is not an error.
func (s *sessionService) DeleteSession(sessionID string) error {
	if err := s.db.Where("id = ?", sessionID).Delete(&models.Session{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

// DeleteExpiredSessions removes every expired session and reports how many
// were removed.
func (s *sessionService) DeleteExpiredSessions() (int64, error) {
	result := s.db.Where("expires_at <= ?", s.now().UTC()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	return result.RowsAffected, nil
}
