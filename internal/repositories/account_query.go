package repositories

import (
	"slices"
	"strings"

	"simple-bank-api/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ApplyAccountQuery filters, searches, sorts and pages accounts.
// The input slice is not modified. The query is expected to be validated already.
func ApplyAccountQuery(accounts []models.Account, query models.AccountQuery) ([]models.Account, models.PaginationMetadata, error) {
	matched := matchAccounts(accounts, query)
	if len(matched) == 0 {
		return nil, models.PaginationMetadata{}, ErrNoResults
	}

	sortAccounts(matched, query.NormalizedSortBy())
	if query.NormalizedSortOrder() == models.SortOrderDesc {
		slices.Reverse(matched)
	}

	metadata := models.NewPaginationMetadata(len(matched), query)
	return pageAccounts(matched, query), metadata, nil
}

// matchAccounts applies the filter term and then the search term to a copy of accounts
func matchAccounts(accounts []models.Account, query models.AccountQuery) []models.Account {
	filter := strings.ToUpper(strings.TrimSpace(query.FilterTerm))
	search := strings.ToUpper(strings.TrimSpace(query.SearchTerm))

	matched := make([]models.Account, 0, len(accounts))
	for _, account := range accounts {
		name := strings.ToUpper(account.Name)
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		if search != "" && name != search {
			continue
		}
		matched = append(matched, account)
	}
	return matched
}

// sortAccounts orders accounts ascending by the given key. The sort is stable so
// that equal keys keep their source order.
func sortAccounts(accounts []models.Account, sortBy string) {
	switch sortBy {
	case models.SortByBalance:
		slices.SortStableFunc(accounts, func(a, b models.Account) int {
			return a.Balance.Cmp(b.Balance)
		})
	case models.SortByName:
		// Collators keep internal buffers and are not safe for concurrent use
		collator := collate.New(language.English)
		slices.SortStableFunc(accounts, func(a, b models.Account) int {
			return collator.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(accounts, func(a, b models.Account) int {
			return models.CompareAccountIDs(a.ID, b.ID)
		})
	}
}

// pageAccounts returns the requested page; a page beyond the end is empty
func pageAccounts(accounts []models.Account, query models.AccountQuery) []models.Account {
	start, end := query.PageBounds(len(accounts))
	if start == end {
		return []models.Account{}
	}
	return accounts[start:end]
}
