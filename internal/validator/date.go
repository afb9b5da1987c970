package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/jinzhu/now"

	apperrors "fintrack/internal/errors"
)

const dateMessage = "must be a date such as 2024-03-05 or 2024-03-05T14:30:00Z"

// calendarDate matches inputs that begin with a full YYYY-MM-DD date.
var calendarDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// ParseDate normalizes a date-like string to a timestamp. RFC 3339 values
// keep their own offset. Everything else is read by jinzhu/now in loc, so
// "2024-03-05" and "2024-03-05 14:30" are local to the application zone.
func ParseDate(field, raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, apperrors.Validation(field, "is required")
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	// jinzhu/now would fill a missing date from the clock.
	if !calendarDate.MatchString(s) {
		return time.Time{}, apperrors.Validation(field, dateMessage)
	}

	t, err := now.ParseInLocation(loc, s)
	if err != nil {
		return time.Time{}, apperrors.Validation(field, dateMessage)
	}
	return t, nil
}

// ParseOptionalDate is ParseDate for partial updates: nil means the field
// was not sent.
func ParseOptionalDate(field string, raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := ParseDate(field, *raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
