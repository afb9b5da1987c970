package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income is a single earning record.
type Income struct {
	Base
	UserID      string          `gorm:"size:255;not null;index:idx_income_user_date,priority:1" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Source      string          `gorm:"size:100;not null" json:"source"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `gorm:"not null;index:idx_income_user_date,priority:2" json:"date"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the singular table name used by the migrations.
func (Income) TableName() string {
	return "income"
}
