package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_BindsWalletTwice(t *testing.T) {
	wallets := []string{
		"thor1dheycdevq39qlkxs2a6wuuzyn4aqxhve4qxtxt",
		"0x4e7Eb3a9d7A2c2d1eA2AeA8fB6C5A2Ff3d1E431b",
		"bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		"bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a",
	}

	b := NewBuilder(DefaultOptions())
	for _, w := range wallets {
		t.Run(w, func(t *testing.T) {
			req, err := b.Build(w)
			require.NoError(t, err)

			assert.Equal(t, 2, strings.Count(req.SQL, w))
			assert.Equal(t, 2, strings.Count(req.SQL, "'"+w+"'"))
			assert.Contains(t, req.SQL, "swaps.from_address = '"+w+"'")
			assert.Contains(t, req.SQL, "a.from_address = '"+w+"'")
			assert.Contains(t, req.SQL, "refunds.tx_id IS NULL")
		})
	}
}

func TestBuild_DefaultOptions(t *testing.T) {
	req, err := NewBuilder(DefaultOptions()).Build("  thor1abc  ")
	require.NoError(t, err)

	assert.Equal(t, 1, req.ResultTTLHours)
	assert.Equal(t, 0, req.MaxAgeMinutes)
	assert.Equal(t, "snowflake-default", req.DataSource)
	assert.Equal(t, "flipside", req.DataProvider)
	assert.Equal(t, map[string]string{"source": "thorchain-analytics", "env": "production"}, req.Tags)
	assert.Contains(t, req.SQL, "'thor1abc'")
}

func TestBuild_TagsAreCopied(t *testing.T) {
	opts := DefaultOptions()
	b := NewBuilder(opts)

	req, err := b.Build("thor1abc")
	require.NoError(t, err)
	req.Tags["env"] = "mutated"

	again, err := b.Build("thor1abc")
	require.NoError(t, err)
	assert.Equal(t, "production", again.Tags["env"])
}

func TestBuild_RejectsMissingAddress(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := NewBuilder(DefaultOptions()).Build(in)
		require.ErrorIs(t, err, ErrMissingAddress)
	}
}

func TestBuild_RejectsInjection(t *testing.T) {
	inputs := []string{
		"thor1abc' OR '1'='1",
		"x'; DROP TABLE swaps; --",
		"thor1 abc",
		"thor1abc--",
		"0x1234",
		"0xzz7Eb3a9d7A2c2d1eA2AeA8fB6C5A2Ff3d1E431b",
	}
	for _, in := range inputs {
		_, err := NewBuilder(DefaultOptions()).Build(in)
		require.ErrorIs(t, err, ErrInvalidAddress, in)
	}
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'abc'", quoteLiteral("abc"))
	assert.Equal(t, "'a''b'", quoteLiteral("a'b"))
}
