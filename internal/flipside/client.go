package flipside

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"affiliateScope/internal/model"
)

// DefaultEndpoint is the public Flipside JSON-RPC endpoint.
const DefaultEndpoint = "https://api-v2.flipsidecrypto.xyz/json-rpc"

const (
	methodCreateQueryRun     = "createQueryRun"
	methodGetQueryRun        = "getQueryRun"
	methodGetQueryRunResults = "getQueryRunResults"

	apiKeyHeader = "x-api-key"
	resultFormat = "json"
)

// Config holds client connection settings.
type Config struct {
	Endpoint    string
	APIKey      string
	HTTPTimeout time.Duration
	// RateLimit caps outgoing calls per second. Zero disables pacing.
	RateLimit float64
}

// Client wraps the go-ethereum JSON-RPC client for the query service.
type Client struct {
	rpcClient *rpc.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient builds a client for the configured endpoint. HTTP endpoints are
// dialed lazily, so no request is made here.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	rpcClient, err := rpc.DialOptions(ctx, cfg.Endpoint,
		rpc.WithHTTPClient(httpClient),
		rpc.WithHeader(apiKeyHeader, cfg.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Endpoint, err)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{rpcClient: rpcClient, limiter: limiter, logger: logger}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

type queryRunEnvelope struct {
	QueryRun *model.QueryRun `json:"queryRun"`
}

type queryRunParams struct {
	QueryRunID string `json:"queryRunId"`
}

type queryRunResultsParams struct {
	QueryRunID string            `json:"queryRunId"`
	Format     string            `json:"format"`
	Page       model.PageRequest `json:"page"`
}

// CreateQueryRun submits a query and returns the run as reported by the
// service. The run is not validated.
func (c *Client) CreateQueryRun(ctx context.Context, req model.QueryRequest) (model.QueryRun, error) {
	var res queryRunEnvelope
	if err := c.call(ctx, &res, methodCreateQueryRun, req); err != nil {
		return model.QueryRun{}, fmt.Errorf("create query run: %w", err)
	}
	if res.QueryRun == nil {
		return model.QueryRun{}, nil
	}
	return *res.QueryRun, nil
}

// GetQueryRun returns the current state of a run.
func (c *Client) GetQueryRun(ctx context.Context, runID string) (model.QueryRun, error) {
	var res queryRunEnvelope
	if err := c.call(ctx, &res, methodGetQueryRun, queryRunParams{QueryRunID: runID}); err != nil {
		return model.QueryRun{}, fmt.Errorf("get query run %s: %w", runID, err)
	}
	if res.QueryRun == nil {
		return model.QueryRun{}, nil
	}
	return *res.QueryRun, nil
}

// GetQueryRunResults fetches one page of a finished run's rows in JSON format.
func (c *Client) GetQueryRunResults(ctx context.Context, runID string, page model.PageRequest) (*model.ResultPage, error) {
	var res model.ResultPage
	params := queryRunResultsParams{QueryRunID: runID, Format: resultFormat, Page: page}
	if err := c.call(ctx, &res, methodGetQueryRunResults, params); err != nil {
		return nil, fmt.Errorf("get query run results %s: %w", runID, err)
	}
	return &res, nil
}

// call sends a single-object params array, the form every method expects.
func (c *Client) call(ctx context.Context, result interface{}, method string, params interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	err := c.rpcClient.CallContext(ctx, result, method, params)
	if err != nil {
		err = classify(method, err)
		c.logger.Warn("rpc call failed",
			zap.String("method", method),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return err
	}

	c.logger.Debug("rpc call", zap.String("method", method), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// RPCError is an error object returned in a JSON-RPC response.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

func classify(method string, err error) error {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%s: http status %d: %w", method, httpErr.StatusCode, err)
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &RPCError{Method: method, Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return err
}
