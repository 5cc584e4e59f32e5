package models

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceScale is the number of decimal places the accounts table stores
const BalanceScale = 4

var (
	ErrInvalidBalance = errors.New("balance cannot be negative")
	ErrEmptyName      = errors.New("account name is required")
)

// Account represents a ledger account. Balances are held in the base currency.
type Account struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Balance   decimal.Decimal `gorm:"type:decimal(19,4);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

// NewAccount creates an account with a fresh identifier and zero balance
func NewAccount(name string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:        uuid.New(),
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BeforeCreate hook for Account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

// BeforeUpdate hook for Account
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return a.Validate()
}

// Validate validates the persisted invariants of an account
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}

	if a.Balance.IsNegative() {
		return ErrInvalidBalance
	}

	return nil
}

// FitsBalanceScale reports whether amount needs no more than BalanceScale decimal places
func FitsBalanceScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(BalanceScale))
}

// CanWithdraw checks if the amount can be taken without overdrawing
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// ApplyDelta adds delta to the balance, refusing to leave it negative
func (a *Account) ApplyDelta(delta decimal.Decimal) error {
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return ErrInvalidBalance
	}
	a.Balance = next
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a detached copy safe to hand out of a store
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// TableName returns the table name for Account
func (a *Account) TableName() string {
	return "accounts"
}

// CompareAccountIDs orders account identifiers by their byte representation,
// which matches the ordering of their canonical string form.
func CompareAccountIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
