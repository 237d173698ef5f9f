package render

import (
	"github.com/shopspring/decimal"

	"affiliateScope/internal/model"
)

const (
	MessageLoading = "Loading..."
	MessageEmpty   = "No data found for this wallet address."
	MessageFailure = "Error fetching data. Please try again."
)

const (
	LabelSwapVolume       = "Swap Volume (USD)"
	LabelNumSwaps         = "Number of Swaps"
	LabelAffiliateFeePaid = "Affiliate Fee Paid (USD)"
)

// Kind tells adapters how to present a DisplayModel.
type Kind string

const (
	KindLoading Kind = "loading"
	KindEmpty   Kind = "empty"
	KindFailure Kind = "error"
	KindTable   Kind = "table"
)

// Metric is one label/value row of the result table.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayModel is the content of the output region. Message is set for every
// kind except KindTable, which carries Metrics instead.
type DisplayModel struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message,omitempty"`
	Metrics []Metric `json:"metrics,omitempty"`
}

func Loading() DisplayModel {
	return DisplayModel{Kind: KindLoading, Message: MessageLoading}
}

func Failure() DisplayModel {
	return DisplayModel{Kind: KindFailure, Message: MessageFailure}
}

func Empty() DisplayModel {
	return DisplayModel{Kind: KindEmpty, Message: MessageEmpty}
}

// Render projects the first row of page into the metrics table. Later rows
// are ignored.
func Render(page *model.ResultPage) DisplayModel {
	if page == nil || len(page.Rows) == 0 {
		return Empty()
	}

	row := page.Rows[0]
	return DisplayModel{
		Kind: KindTable,
		Metrics: []Metric{
			{Label: LabelSwapVolume, Value: "$" + plain(row.SwapVolume)},
			{Label: LabelNumSwaps, Value: plain(row.NumSwaps)},
			{Label: LabelAffiliateFeePaid, Value: "$" + plain(row.AffiliateFeePaid)},
		},
	}
}

func plain(v decimal.NullDecimal) string {
	if !v.Valid {
		return "0"
	}
	return v.Decimal.String()
}
