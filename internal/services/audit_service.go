package services

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Amounts and timestamps in changes are stored
// in canonical text form. Failures are logged and never reach the caller.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(action, changes),
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// encodeChanges renders changes as JSON, with decimals fixed to two places
// and times in UTC RFC 3339. An empty change set encodes as "".
func encodeChanges(action string, changes map[string]any) string {
	if len(changes) == 0 {
		return ""
	}

	normalized := make(map[string]any, len(changes))
	for k, v := range changes {
		switch v := v.(type) {
		case decimal.Decimal:
			normalized[k] = v.StringFixed(2)
		case *decimal.Decimal:
			if v != nil {
				normalized[k] = v.StringFixed(2)
			} else {
				normalized[k] = nil
			}
		case time.Time:
			normalized[k] = v.UTC().Format(time.RFC3339)
		default:
			normalized[k] = v
		}
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}
