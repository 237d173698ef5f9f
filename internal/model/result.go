package model

import "github.com/shopspring/decimal"

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 1000
)

// PageRequest selects one page of a run's result set.
type PageRequest struct {
	Number int `json:"number"`
	Size   int `json:"size"`
}

// DefaultPage returns the first page with the default page size.
func DefaultPage() PageRequest {
	return PageRequest{Number: DefaultPageNumber, Size: DefaultPageSize}
}

// ResultRow holds the affiliate metrics for one wallet. Null and absent
// columns both decode as invalid.
type ResultRow struct {
	SwapVolume       decimal.NullDecimal `json:"swap_volume"`
	NumSwaps         decimal.NullDecimal `json:"n_swaps"`
	AffiliateFeePaid decimal.NullDecimal `json:"affiliate_fee_paid"`
}

// PageInfo describes the page returned by the service.
type PageInfo struct {
	CurrentPageNumber int `json:"currentPageNumber"`
	CurrentPageSize   int `json:"currentPageSize"`
	TotalRows         int `json:"totalRows"`
	TotalPages        int `json:"totalPages"`
}

// ResultPage is the result object of getQueryRunResults.
type ResultPage struct {
	ColumnNames []string    `json:"columnNames,omitempty"`
	Rows        []ResultRow `json:"rows"`
	Page        PageInfo    `json:"page"`
}
