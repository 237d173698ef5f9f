package flipside

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliateScope/internal/flipside/flipsidetest"
	"affiliateScope/internal/model"
)

func newTestClient(t *testing.T, srv *flipsidetest.Server) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{
		Endpoint:    srv.URL,
		APIKey:      "test-key",
		HTTPTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCreateQueryRun_SendsRequestAndKey(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("createQueryRun", func(flipsidetest.Call) flipsidetest.Reply {
		return flipsidetest.Reply{Result: flipsidetest.QueryRun("run-1", "QUERY_STATE_READY")}
	})

	c := newTestClient(t, srv)
	req := model.QueryRequest{
		SQL:            "SELECT 1",
		ResultTTLHours: 1,
		Tags:           map[string]string{"source": "thorchain-analytics"},
		DataSource:     "snowflake-default",
		DataProvider:   "flipside",
	}

	run, err := c.CreateQueryRun(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, model.RunStateReady, run.State)

	calls := srv.CallsTo("createQueryRun")
	require.Len(t, calls, 1)
	assert.Equal(t, "test-key", calls[0].APIKey)
	require.Len(t, calls[0].Params, 1)

	var sent model.QueryRequest
	require.NoError(t, json.Unmarshal(calls[0].Params[0], &sent))
	assert.Equal(t, req, sent)
}

func TestCreateQueryRun_MissingRunIsZero(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("createQueryRun", func(flipsidetest.Call) flipsidetest.Reply {
		return flipsidetest.Reply{Result: map[string]interface{}{}}
	})

	run, err := newTestClient(t, srv).CreateQueryRun(context.Background(), model.QueryRequest{})
	require.NoError(t, err)
	assert.Empty(t, run.ID)
}

func TestGetQueryRun_Params(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("getQueryRun", func(flipsidetest.Call) flipsidetest.Reply {
		return flipsidetest.Reply{Result: map[string]interface{}{
			"queryRun": map[string]interface{}{
				"id":           "run-2",
				"state":        "QUERY_STATE_FAILED",
				"errorName":    "QueryRunExecutionError",
				"errorMessage": "syntax error",
			},
		}}
	})

	run, err := newTestClient(t, srv).GetQueryRun(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Equal(t, model.RunStateFailed, run.State)
	require.NotNil(t, run.ErrorMessage)
	assert.Equal(t, "syntax error", *run.ErrorMessage)

	calls := srv.CallsTo("getQueryRun")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"queryRunId":"run-2"}`, string(calls[0].Params[0]))
}

func TestGetQueryRunResults_PageParams(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("getQueryRunResults", func(flipsidetest.Call) flipsidetest.Reply {
		return flipsidetest.Reply{Result: flipsidetest.Rows(map[string]interface{}{
			"swap_volume":        1234,
			"n_swaps":            5,
			"affiliate_fee_paid": 12.5,
		})}
	})

	page, err := newTestClient(t, srv).GetQueryRunResults(context.Background(), "run-3", model.DefaultPage())
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "1234", page.Rows[0].SwapVolume.Decimal.String())
	assert.Equal(t, "12.5", page.Rows[0].AffiliateFeePaid.Decimal.String())
	assert.Equal(t, 1, page.Page.TotalRows)

	calls := srv.CallsTo("getQueryRunResults")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"queryRunId":"run-3","format":"json","page":{"number":1,"size":1000}}`, string(calls[0].Params[0]))
}

func TestCall_RPCError(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("getQueryRun", func(flipsidetest.Call) flipsidetest.Reply {
		return flipsidetest.Reply{Error: &flipsidetest.ErrorObject{Code: -32000, Message: "query run not found"}}
	})

	_, err := newTestClient(t, srv).GetQueryRun(context.Background(), "missing")
	require.Error(t, err)

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "getQueryRun", rpcErr.Method)
	assert.Contains(t, rpcErr.Message, "query run not found")
}

func TestCall_HTTPStatusError(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("createQueryRun", func(flipsidetest.Call) flipsidetest.Reply {
		return flipsidetest.Reply{Status: http.StatusUnauthorized}
	})

	_, err := newTestClient(t, srv).CreateQueryRun(context.Background(), model.QueryRequest{})
	require.Error(t, err)

	var httpErr rpc.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestCall_TransportError(t *testing.T) {
	srv := flipsidetest.NewServer()
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.GetQueryRun(context.Background(), "run-1")
	require.Error(t, err)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	require.Error(t, err)
}

func TestCall_RateLimitHonoursContext(t *testing.T) {
	srv := flipsidetest.NewServer()
	defer srv.Close()
	srv.Handle("getQueryRun", flipsidetest.StateSequence("run-1", "QUERY_STATE_RUNNING"))

	c, err := NewClient(context.Background(), Config{Endpoint: srv.URL, RateLimit: 0.001}, nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetQueryRun(context.Background(), "run-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.GetQueryRun(ctx, "run-1")
	require.Error(t, err)
	assert.Len(t, srv.CallsTo("getQueryRun"), 1)
}
