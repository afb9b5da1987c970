package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
)

// maxAmount is the exclusive magnitude bound of a NUMERIC(12,2) column.
var maxAmount = decimal.New(1, 10)

// AmountError reports an amount field that is not a JSON string or number.
type AmountError struct {
	Field   string
	Message string
}

func (e *AmountError) Error() string {
	return e.Field + ": " + e.Message
}

// NumericString holds a monetary amount as sent by the client. It accepts
// either a JSON string ("12.50") or a JSON number (12.5) and keeps the
// literal text so no float rounding happens before decimal parsing.
type NumericString string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return &AmountError{Field: "amount", Message: "must be a number or numeric string"}
	}
	*n = NumericString(num.String())
	return nil
}

// ParseAmount parses raw as an exact decimal with at most two fraction
// digits and a magnitude below 10^10. Zero and negative values are allowed.
func ParseAmount(field string, raw NumericString) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return decimal.Zero, apperrors.Validation(field, "is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.Validation(field, fmt.Sprintf("%q is not a valid amount", s))
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, apperrors.Validation(field, "must have at most 2 decimal places")
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, apperrors.Validation(field, "must be less than 10000000000")
	}
	return d.Round(2), nil
}

// ParseOptionalAmount is ParseAmount for partial updates: nil means the
// field was not sent.
func ParseOptionalAmount(field string, raw *NumericString) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := ParseAmount(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
