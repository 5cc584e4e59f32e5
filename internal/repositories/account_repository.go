package repositories

import (
	"context"
	"errors"
	"fmt"

	"simple-bank-api/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements AccountRepositoryInterface on top of gorm
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{
		db: db,
	}
}

// Get retrieves an account by ID
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAll loads accounts in creation order and runs the query engine over them
func (r *accountRepository) GetAll(ctx context.Context, query models.AccountQuery) ([]models.Account, models.PaginationMetadata, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").Order("id ASC").
		Find(&accounts).Error; err != nil {
		return nil, models.PaginationMetadata{}, fmt.Errorf("failed to get accounts: %w", err)
	}

	return ApplyAccountQuery(accounts, query)
}

// Add persists a new account
func (r *accountRepository) Add(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update applies a balance delta under a row lock
func (r *accountRepository) Update(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*models.Account, error) {
	var updated *models.Account

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, id)
		if err != nil {
			return err
		}

		if err := account.ApplyDelta(delta); err != nil {
			return ErrInsufficientFunds
		}

		if err := tx.Save(account).Error; err != nil {
			return fmt.Errorf("failed to update account balance: %w", err)
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Transfer moves amount from sender to recipient in a single database transaction.
// Rows are locked in ascending id order so opposite transfers cannot deadlock.
func (r *accountRepository) Transfer(ctx context.Context, senderID, recipientID uuid.UUID, amount decimal.Decimal) (*models.Account, *models.Account, error) {
	var sender, recipient *models.Account

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := make(map[uuid.UUID]*models.Account, 2)
		for _, id := range lockOrder(senderID, recipientID) {
			account, err := lockAccount(tx, id)
			if err != nil {
				return err
			}
			locked[id] = account
		}

		from, to := locked[senderID], locked[recipientID]
		if !from.CanWithdraw(amount) {
			return ErrInsufficientFunds
		}

		if senderID == recipientID {
			sender, recipient = from, from.Clone()
			return nil
		}

		if err := from.ApplyDelta(amount.Neg()); err != nil {
			return ErrInsufficientFunds
		}
		if err := to.ApplyDelta(amount); err != nil {
			return fmt.Errorf("failed to credit recipient account: %w", err)
		}

		if err := tx.Save(from).Error; err != nil {
			return fmt.Errorf("failed to debit sender account: %w", err)
		}
		if err := tx.Save(to).Error; err != nil {
			return fmt.Errorf("failed to credit recipient account: %w", err)
		}

		sender, recipient = from, to
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return sender, recipient, nil
}

// lockAccount reads an account with SELECT ... FOR UPDATE inside tx
func lockAccount(tx *gorm.DB, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

// lockOrder returns the distinct ids in the order their locks must be taken
func lockOrder(a, b uuid.UUID) []uuid.UUID {
	switch c := models.CompareAccountIDs(a, b); {
	case c == 0:
		return []uuid.UUID{a}
	case c < 0:
		return []uuid.UUID{a, b}
	default:
		return []uuid.UUID{b, a}
	}
}
