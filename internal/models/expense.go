package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of ways an expense can be paid.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCreditCard    PaymentMethod = "creditCard"
	PaymentMethodDebitCard     PaymentMethod = "debitCard"
	PaymentMethodDigitalWallet PaymentMethod = "digitalWallet"
	PaymentMethodBankTransfer  PaymentMethod = "bankTransfer"
)

// PaymentMethods lists every valid payment method.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodDigitalWallet,
	PaymentMethodBankTransfer,
}

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts s to a PaymentMethod. An empty string yields
// the default, cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return PaymentMethodCash, nil
	}
	p := PaymentMethod(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return p, nil
}

// Expense is a single spend record.
type Expense struct {
	Base
	UserID        string          `gorm:"size:255;not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	CategoryID    string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description   string          `gorm:"not null" json:"description"`
	PaymentMethod PaymentMethod   `gorm:"size:50;not null;default:'cash'" json:"payment_method"`
	Date          time.Time       `gorm:"not null;index:idx_expenses_user_date,priority:2" json:"date"`

	User     *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
}
