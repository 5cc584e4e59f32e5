package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	account := NewAccount("Greg Jones")

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, "Greg Jones", account.Name)
	assert.True(t, account.Balance.IsZero())
	assert.False(t, account.CreatedAt.IsZero())
	assert.NotEqual(t, account.ID, NewAccount("Greg Jones").ID)
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{
			name:    "valid account",
			account: Account{Name: "Tom Hanks", Balance: decimal.NewFromInt(5000)},
		},
		{
			name:    "zero balance",
			account: Account{Name: "Tom Hanks", Balance: decimal.Zero},
		},
		{
			name:    "blank name",
			account: Account{Name: "   ", Balance: decimal.Zero},
			wantErr: ErrEmptyName,
		},
		{
			name:    "negative balance",
			account: Account{Name: "Tom Hanks", Balance: decimal.NewFromInt(-1)},
			wantErr: ErrInvalidBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	account := NewAccount("Betty Crocker")

	require.NoError(t, account.ApplyDelta(decimal.RequireFromString("100.10")))
	require.NoError(t, account.ApplyDelta(decimal.RequireFromString("-0.10")))
	assert.Equal(t, "100", account.Balance.String())

	err := account.ApplyDelta(decimal.RequireFromString("-100.01"))
	assert.ErrorIs(t, err, ErrInvalidBalance)
	assert.Equal(t, "100", account.Balance.String(), "balance must be unchanged after a rejected delta")
}

func TestFitsBalanceScale(t *testing.T) {
	assert.True(t, FitsBalanceScale(decimal.RequireFromString("100")))
	assert.True(t, FitsBalanceScale(decimal.RequireFromString("0.0001")))
	assert.True(t, FitsBalanceScale(decimal.RequireFromString("1.50000")))
	assert.False(t, FitsBalanceScale(decimal.RequireFromString("0.00005")))
	assert.False(t, FitsBalanceScale(decimal.RequireFromString("-12.34567")))
}

func TestAccount_CanWithdraw(t *testing.T) {
	account := &Account{Name: "Greg Jones", Balance: decimal.NewFromInt(222)}

	assert.True(t, account.CanWithdraw(decimal.NewFromInt(222)))
	assert.True(t, account.CanWithdraw(decimal.Zero))
	assert.False(t, account.CanWithdraw(decimal.RequireFromString("222.01")))
}

func TestAccount_Clone(t *testing.T) {
	account := &Account{ID: uuid.New(), Name: "Greg Jones", Balance: decimal.NewFromInt(222)}
	clone := account.Clone()

	clone.Balance = decimal.Zero
	assert.Equal(t, "222", account.Balance.String())
}

func TestCompareAccountIDs(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	assert.Equal(t, -1, CompareAccountIDs(low, high))
	assert.Equal(t, 1, CompareAccountIDs(high, low))
	assert.Equal(t, 0, CompareAccountIDs(low, low))
}

func TestAccountQuery_Defaults(t *testing.T) {
	q := NewAccountQuery()

	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, DefaultCurrentPage, q.CurrentPage)

	q.CurrentPage = 3
	q.PageSize = 5
	start, end := q.PageBounds(12)
	assert.Equal(t, 10, start)
	assert.Equal(t, 12, end)

	q.SortBy = " balance "
	q.SortOrder = "desc"
	assert.Equal(t, SortByBalance, q.NormalizedSortBy())
	assert.Equal(t, SortOrderDesc, q.NormalizedSortOrder())
}

func TestAccountQuery_PageBounds(t *testing.T) {
	testCases := []struct {
		name        string
		pageSize    int
		currentPage int
		total       int
		start, end  int
	}{
		{"first page", 10, 1, 25, 0, 10},
		{"last partial page", 10, 3, 25, 20, 25},
		{"exactly full", 5, 2, 10, 5, 10},
		{"past the end", 10, 4, 25, 25, 25},
		{"no matches", 10, 1, 0, 0, 0},
		{"huge page number", 100, 1<<62 + 1, 3, 3, 3},
		{"huge page size", math.MaxInt, 1, 4, 0, 4},
		{"huge page size and number", math.MaxInt, math.MaxInt - 1, 4, 4, 4},
		{"non-positive size", 0, 1, 4, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := AccountQuery{PageSize: tc.pageSize, CurrentPage: tc.currentPage}
			start, end := q.PageBounds(tc.total)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestPaginationMetadata_TotalPages(t *testing.T) {
	assert.Equal(t, 3, PaginationMetadata{TotalCount: 21, PageSize: 10}.TotalPages())
	assert.Equal(t, 2, PaginationMetadata{TotalCount: 20, PageSize: 10}.TotalPages())
	assert.Equal(t, 0, PaginationMetadata{TotalCount: 0, PageSize: 10}.TotalPages())
	assert.Equal(t, 0, PaginationMetadata{TotalCount: 5, PageSize: 0}.TotalPages())
	assert.Equal(t, 1, PaginationMetadata{TotalCount: 5, PageSize: math.MaxInt}.TotalPages())
}

func TestParseCurrencyCodes(t *testing.T) {
	assert.Equal(t, []string{"EUR", "JPY", "CAD"}, ParseCurrencyCodes("eur, jpy ,CAD"))
	assert.Equal(t, []string{"EUR", "JPY"}, ParseCurrencyCodes("eur,,jpy,EUR"))
	assert.Empty(t, ParseCurrencyCodes(""))
}
