package services

import (
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

var march5 = time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)
