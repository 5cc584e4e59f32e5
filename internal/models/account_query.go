package models

import "strings"

// Sort keys accepted by AccountQuery.SortBy
const (
	SortByName    = "NAME"
	SortByBalance = "BALANCE"
)

// Sort directions accepted by AccountQuery.SortOrder
const (
	SortOrderAsc  = "ASC"
	SortOrderDesc = "DESC"
)

const (
	DefaultPageSize    = 10
	DefaultCurrentPage = 1
)

// AccountQuery describes a search/filter/sort/page request over accounts
type AccountQuery struct {
	SearchTerm  string `query:"searchTerm" json:"searchTerm,omitempty"`
	FilterTerm  string `query:"filterTerm" json:"filterTerm,omitempty"`
	SortBy      string `query:"sortBy" json:"sortBy,omitempty"`
	SortOrder   string `query:"sortOrder" json:"sortOrder,omitempty"`
	PageSize    int    `query:"pageSize" json:"pageSize"`
	CurrentPage int    `query:"currentPage" json:"currentPage"`
}

// NewAccountQuery returns a query with default paging and no criteria
func NewAccountQuery() AccountQuery {
	return AccountQuery{
		PageSize:    DefaultPageSize,
		CurrentPage: DefaultCurrentPage,
	}
}

// NormalizedSortBy returns the sort key trimmed and upper-cased
func (q AccountQuery) NormalizedSortBy() string {
	return strings.ToUpper(strings.TrimSpace(q.SortBy))
}

// NormalizedSortOrder returns the sort direction trimmed and upper-cased
func (q AccountQuery) NormalizedSortOrder() string {
	return strings.ToUpper(strings.TrimSpace(q.SortOrder))
}

// PageBounds returns the slice bounds of the requested page within total matches.
// A page past the end yields an empty range at total.
func (q AccountQuery) PageBounds(total int) (start, end int) {
	if total <= 0 || q.PageSize <= 0 || q.CurrentPage <= 0 {
		return 0, 0
	}
	if q.CurrentPage-1 > (total-1)/q.PageSize {
		return total, total
	}

	start = (q.CurrentPage - 1) * q.PageSize
	end = start + min(q.PageSize, total-start)
	return start, end
}

// PaginationMetadata describes the matched set a page was cut from
type PaginationMetadata struct {
	TotalCount  int `json:"TotalCount"`
	PageSize    int `json:"PageSize"`
	CurrentPage int `json:"CurrentPage"`
}

// NewPaginationMetadata builds metadata for a query over totalCount matches
func NewPaginationMetadata(totalCount int, q AccountQuery) PaginationMetadata {
	return PaginationMetadata{
		TotalCount:  totalCount,
		PageSize:    q.PageSize,
		CurrentPage: q.CurrentPage,
	}
}

// TotalPages returns how many pages the matched set spans
func (p PaginationMetadata) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount-1)/p.PageSize + 1
}

// AccountPage is one page of a query result
type AccountPage struct {
	Accounts   []Account
	Pagination PaginationMetadata
}
