package dto

import "github.com/shopspring/decimal"

type SummaryResponse struct {
	Sessions        int             `json:"sessions"`
	OpeningTotal    decimal.Decimal `json:"opening_total"`
	ActualTotal     decimal.Decimal `json:"actual_total"`
	DifferenceTotal decimal.Decimal `json:"difference_total"`
}

// BucketResponse is one {label, total} pair of a period breakdown. Buckets
// with no transactions are included with a zero total.
type BucketResponse struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}
