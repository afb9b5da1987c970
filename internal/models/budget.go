package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
)

// BudgetPeriods lists every valid budget period.
var BudgetPeriods = []BudgetPeriod{
	BudgetPeriodWeekly,
	BudgetPeriodMonthly,
	BudgetPeriodQuarterly,
	BudgetPeriodYearly,
}

// Valid reports whether p is a known budget period.
func (p BudgetPeriod) Valid() bool {
	for _, v := range BudgetPeriods {
		if p == v {
			return true
		}
	}
	return false
}

// ParseBudgetPeriod converts s to a BudgetPeriod. An empty string yields
// the default, monthly.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	if s == "" {
		return BudgetPeriodMonthly, nil
	}
	p := BudgetPeriod(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown budget period %q", s)
	}
	return p, nil
}

// Budget is a spending limit for one category. Period and StartDate are
// stored and returned, but progress is always measured over the current
// calendar month.
type Budget struct {
	Base
	UserID     string          `gorm:"size:255;not null;index" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"size:20;not null;default:'monthly'" json:"period"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`

	User     *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
}
