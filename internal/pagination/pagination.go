// Package pagination bounds list queries.
package pagination

import (
	"gorm.io/gorm"
)

const (
	// DefaultLimit is used when the client does not send a limit.
	DefaultLimit = 50
	// MaxLimit caps a single list response.
	MaxLimit = 500
)

// LimitRequest holds the optional limit query parameter.
type LimitRequest struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=500"`
}

// Defaults fills in the default limit when none was provided.
func (l *LimitRequest) Defaults() {
	if l.Limit == 0 {
		l.Limit = DefaultLimit
	}
}

// Normalize clamps limit to [1, MaxLimit], mapping non-positive values to
// DefaultLimit.
func Normalize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// Limit returns a GORM scope that applies LIMIT for the given request.
func Limit(limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(Normalize(limit))
	}
}
