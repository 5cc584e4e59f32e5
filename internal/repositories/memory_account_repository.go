package repositories

import (
	"context"
	"sync"

	"simple-bank-api/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryEntry guards a single stored account
type memoryEntry struct {
	mu      sync.Mutex
	account models.Account
}

// memoryAccountRepository is an in-process AccountRepositoryInterface.
// The map is guarded by mu; each account is guarded by its own entry mutex.
type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*memoryEntry
	order    []uuid.UUID
}

// NewMemoryAccountRepository creates an in-memory store seeded with accounts
func NewMemoryAccountRepository(seed ...models.Account) AccountRepositoryInterface {
	r := &memoryAccountRepository{
		accounts: make(map[uuid.UUID]*memoryEntry, len(seed)),
	}
	for _, account := range seed {
		r.accounts[account.ID] = &memoryEntry{account: account}
		r.order = append(r.order, account.ID)
	}
	return r
}

func (r *memoryAccountRepository) entry(id uuid.UUID) (*memoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.accounts[id]
	return e, ok
}

// Get returns a copy of the stored account
func (r *memoryAccountRepository) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, ok := r.entry(id)
	if !ok {
		return nil, ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.account.Clone(), nil
}

// GetAll snapshots accounts in insertion order and runs the query engine over them
func (r *memoryAccountRepository) GetAll(ctx context.Context, query models.AccountQuery) ([]models.Account, models.PaginationMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.PaginationMetadata{}, err
	}

	r.mu.RLock()
	snapshot := make([]models.Account, 0, len(r.order))
	for _, id := range r.order {
		e := r.accounts[id]
		e.mu.Lock()
		snapshot = append(snapshot, e.account)
		e.mu.Unlock()
	}
	r.mu.RUnlock()

	return ApplyAccountQuery(snapshot, query)
}

// Add stores a copy of account
func (r *memoryAccountRepository) Add(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := account.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return ErrAccountExists
	}
	r.accounts[account.ID] = &memoryEntry{account: *account}
	r.order = append(r.order, account.ID)
	return nil
}

// Update applies a balance delta while holding the account's lock
func (r *memoryAccountRepository) Update(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, ok := r.entry(id)
	if !ok {
		return nil, ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.account.ApplyDelta(delta); err != nil {
		return nil, ErrInsufficientFunds
	}
	return e.account.Clone(), nil
}

// Transfer holds both account locks, taken in ascending id order, for the whole move
func (r *memoryAccountRepository) Transfer(ctx context.Context, senderID, recipientID uuid.UUID, amount decimal.Decimal) (*models.Account, *models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	from, ok := r.entry(senderID)
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	to, ok := r.entry(recipientID)
	if !ok {
		return nil, nil, ErrAccountNotFound
	}

	entries := map[uuid.UUID]*memoryEntry{senderID: from, recipientID: to}
	for _, id := range lockOrder(senderID, recipientID) {
		e := entries[id]
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	if !from.account.CanWithdraw(amount) {
		return nil, nil, ErrInsufficientFunds
	}
	if senderID == recipientID {
		return from.account.Clone(), from.account.Clone(), nil
	}

	if err := from.account.ApplyDelta(amount.Neg()); err != nil {
		return nil, nil, ErrInsufficientFunds
	}
	if err := to.account.ApplyDelta(amount); err != nil {
		// undo the debit so neither leg is visible
		_ = from.account.ApplyDelta(amount)
		return nil, nil, err
	}

	return from.account.Clone(), to.account.Clone(), nil
}
