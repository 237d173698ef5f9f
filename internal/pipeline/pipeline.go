package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"affiliateScope/internal/model"
	"affiliateScope/internal/poll"
	"affiliateScope/internal/query"
	"affiliateScope/internal/render"
	"affiliateScope/internal/storage"
)

// ErrMalformedResponse is returned when the service response lacks a field
// the pipeline depends on.
var ErrMalformedResponse = errors.New("malformed service response")

// API is the subset of the query service used by the pipeline.
type API interface {
	CreateQueryRun(ctx context.Context, req model.QueryRequest) (model.QueryRun, error)
	GetQueryRun(ctx context.Context, runID string) (model.QueryRun, error)
	GetQueryRunResults(ctx context.Context, runID string, page model.PageRequest) (*model.ResultPage, error)
}

// Config holds runtime settings for one pipeline.
type Config struct {
	Poll poll.Config
	Page model.PageRequest
	// Timeout bounds a whole invocation. Zero means no deadline.
	Timeout time.Duration
}

// Pipeline submits the affiliate query for a wallet and renders its result.
type Pipeline struct {
	cfg     Config
	builder *query.Builder
	api     API
	poller  *poll.Poller
	region  storage.Region
	logger  *zap.Logger
}

func New(cfg Config, builder *query.Builder, api API, region storage.Region, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Page.Number <= 0 || cfg.Page.Size <= 0 {
		cfg.Page = model.DefaultPage()
	}
	return &Pipeline{
		cfg:     cfg,
		builder: builder,
		api:     api,
		poller:  poll.NewPoller(cfg.Poll, api, logger),
		region:  region,
		logger:  logger,
	}
}

// Run executes one invocation. Address errors return before any network call
// and leave the region untouched; every later failure replaces the region
// with the generic failure view.
func (p *Pipeline) Run(ctx context.Context, wallet string) (render.DisplayModel, error) {
	if p.builder == nil {
		return render.Failure(), fmt.Errorf("query builder is nil")
	}
	if p.api == nil {
		return render.Failure(), fmt.Errorf("api client is nil")
	}

	req, err := p.builder.Build(wallet)
	if err != nil {
		return render.DisplayModel{}, err
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	logger := p.logger.With(zap.String("invocation", uuid.NewString()))
	if err := p.replace(render.Loading()); err != nil {
		logger.Warn("write loading view", zap.Error(err))
	}

	start := time.Now()
	page, err := p.execute(ctx, req, logger)
	if err != nil {
		logger.Error("query pipeline failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		view := render.Failure()
		if werr := p.replace(view); werr != nil {
			logger.Warn("write failure view", zap.Error(werr))
		}
		return view, err
	}

	view := render.Render(page)
	rows := 0
	if page != nil {
		rows = len(page.Rows)
	}
	logger.Info("query pipeline complete",
		zap.String("kind", string(view.Kind)),
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err := p.replace(view); err != nil {
		return view, fmt.Errorf("write result view: %w", err)
	}
	return view, nil
}

func (p *Pipeline) execute(ctx context.Context, req model.QueryRequest, logger *zap.Logger) (*model.ResultPage, error) {
	run, err := p.api.CreateQueryRun(ctx, req)
	if err != nil {
		return nil, err
	}
	if run.ID == "" {
		return nil, fmt.Errorf("%w: createQueryRun returned no run id", ErrMalformedResponse)
	}
	logger.Info("query run submitted", zap.String("run_id", run.ID), zap.String("state", string(run.State)))

	done, err := p.poller.AwaitCompletion(ctx, run.ID)
	if errors.Is(err, poll.ErrMalformedStatus) {
		return nil, fmt.Errorf("%w: await query run %s: %w", ErrMalformedResponse, run.ID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("await query run %s: %w", run.ID, err)
	}
	logger.Debug("query run finished", zap.String("run_id", run.ID), zap.String("state", string(done.State)))

	page, err := p.api.GetQueryRunResults(ctx, run.ID, p.cfg.Page)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (p *Pipeline) replace(view render.DisplayModel) error {
	if p.region == nil {
		return nil
	}
	return p.region.Replace(view)
}
