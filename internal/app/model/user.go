package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account identity plus its prepaid credit balance.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	CreditsCents int64     `json:"-" db:"credits_cents"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credits returns the balance as a decimal.
func (u User) Credits() decimal.Decimal {
	return DecimalFromCents(u.CreditsCents)
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
