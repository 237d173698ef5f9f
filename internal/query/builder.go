package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"affiliateScope/internal/model"
)

var (
	// ErrMissingAddress is returned for an empty wallet address.
	ErrMissingAddress = errors.New("wallet address is required")
	// ErrInvalidAddress is returned for an address that cannot be used as a literal.
	ErrInvalidAddress = errors.New("invalid wallet address")
)

const walletPlaceholder = "{{wallet}}"

// affiliateSQL sums the wallet's non-refunded swap volume, swap count and
// affiliate fees. The fee of a multi-pool swap is split across its pools.
const affiliateSQL = `
WITH pools_count AS (
    SELECT
        swaps.tx_id,
        COUNT(DISTINCT swaps.pool_name) AS n_pools
    FROM thorchain.defi.fact_swaps AS swaps
    LEFT JOIN thorchain.defi.fact_refund_events AS refunds
    ON swaps.tx_id = refunds.tx_id
    WHERE refunds.tx_id IS NULL
    AND swaps.from_address = {{wallet}}
    GROUP BY swaps.tx_id
)
SELECT
    ROUND(SUM(from_amount_usd)) AS swap_volume,
    ROUND(COUNT(DISTINCT a.tx_id)) AS n_swaps,
    ROUND(SUM((from_amount_usd / n_pools) * AFFILIATE_FEE_BASIS_POINTS) / 10000) AS affiliate_fee_paid
FROM thorchain.defi.fact_swaps AS a
JOIN pools_count USING(tx_id)
WHERE a.from_address = {{wallet}}
AND a.affiliate_address IS NOT NULL;
`

var addressPattern = regexp.MustCompile(`^[A-Za-z0-9:]+$`)

// Options controls the non-SQL fields of the submission.
type Options struct {
	ResultTTLHours int
	MaxAgeMinutes  int
	Tags           map[string]string
	DataSource     string
	DataProvider   string
}

// DefaultOptions returns the submission settings used by the dashboard.
func DefaultOptions() Options {
	return Options{
		ResultTTLHours: 1,
		MaxAgeMinutes:  0,
		Tags: map[string]string{
			"source": "thorchain-analytics",
			"env":    "production",
		},
		DataSource:   "snowflake-default",
		DataProvider: "flipside",
	}
}

// Builder produces query requests for a wallet.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build validates the wallet and returns a fresh request with the wallet
// bound into both filter predicates.
func (b *Builder) Build(wallet string) (model.QueryRequest, error) {
	wallet, err := NormalizeAddress(wallet)
	if err != nil {
		return model.QueryRequest{}, err
	}

	tags := make(map[string]string, len(b.opts.Tags))
	for k, v := range b.opts.Tags {
		tags[k] = v
	}

	return model.QueryRequest{
		SQL:            strings.ReplaceAll(affiliateSQL, walletPlaceholder, quoteLiteral(wallet)),
		ResultTTLHours: b.opts.ResultTTLHours,
		MaxAgeMinutes:  b.opts.MaxAgeMinutes,
		Tags:           tags,
		DataSource:     b.opts.DataSource,
		DataProvider:   b.opts.DataProvider,
	}, nil
}

// NormalizeAddress trims the address and rejects values that are not plain
// chain addresses.
func NormalizeAddress(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrMissingAddress
	}
	if !addressPattern.MatchString(input) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, input)
	}
	if strings.HasPrefix(input, "0x") && !common.IsHexAddress(input) {
		return "", fmt.Errorf("%w: malformed hex address %s", ErrInvalidAddress, input)
	}
	return input, nil
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
