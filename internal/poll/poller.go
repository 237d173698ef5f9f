package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"affiliateScope/internal/model"
)

const DefaultInterval = time.Second

var (
	// ErrRunFailed matches a *RunFailedError.
	ErrRunFailed = errors.New("query run failed")
	// ErrAttemptsExhausted is returned when MaxAttempts status checks did not
	// observe success.
	ErrAttemptsExhausted = errors.New("query run did not complete")
	// ErrMalformedStatus is returned when a status response carries no state.
	ErrMalformedStatus = errors.New("query run status has no state")
)

// RunFailedError reports a run that the service marked failed or canceled.
type RunFailedError struct {
	RunID   string
	State   model.RunState
	Name    string
	Message string
}

func (e *RunFailedError) Error() string {
	msg := fmt.Sprintf("query run %s ended in %s", e.RunID, e.State)
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *RunFailedError) Is(target error) bool {
	return target == ErrRunFailed
}

// StatusFetcher returns the current state of a run.
type StatusFetcher interface {
	GetQueryRun(ctx context.Context, runID string) (model.QueryRun, error)
}

// Config controls the status loop.
type Config struct {
	Interval time.Duration
	// MaxAttempts caps status checks. Zero polls until the context ends.
	MaxAttempts int
	// IgnoreFailedState treats failed and canceled runs as still pending.
	// Only useful together with MaxAttempts or a context deadline.
	IgnoreFailedState bool
}

// Poller waits for a run to reach a terminal state.
type Poller struct {
	cfg     Config
	fetcher StatusFetcher
	logger  *zap.Logger
	wait    func(ctx context.Context, d time.Duration) error
}

func NewPoller(cfg Config, fetcher StatusFetcher, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	return &Poller{cfg: cfg, fetcher: fetcher, logger: logger, wait: sleep}
}

// AwaitCompletion checks the run every Interval until it succeeds. Status
// call errors are returned without retry.
func (p *Poller) AwaitCompletion(ctx context.Context, runID string) (model.QueryRun, error) {
	if p.fetcher == nil {
		return model.QueryRun{}, fmt.Errorf("status fetcher is nil")
	}

	for attempt := 1; ; attempt++ {
		run, err := p.fetcher.GetQueryRun(ctx, runID)
		if err != nil {
			return model.QueryRun{}, err
		}

		p.logger.Debug("query run status",
			zap.String("run_id", runID),
			zap.String("state", string(run.State)),
			zap.Int("attempt", attempt),
		)

		if run.State == "" {
			return run, fmt.Errorf("%w: run %s", ErrMalformedStatus, runID)
		}
		if run.State.IsSuccess() {
			return run, nil
		}
		if run.State.IsFailure() && !p.cfg.IgnoreFailedState {
			return run, failedError(runID, run)
		}
		if p.cfg.MaxAttempts > 0 && attempt >= p.cfg.MaxAttempts {
			return run, fmt.Errorf("%w after %d checks, last state %s", ErrAttemptsExhausted, attempt, run.State)
		}

		if err := p.wait(ctx, p.cfg.Interval); err != nil {
			return run, err
		}
	}
}

func failedError(runID string, run model.QueryRun) *RunFailedError {
	e := &RunFailedError{RunID: runID, State: run.State}
	if run.ErrorName != nil {
		e.Name = *run.ErrorName
	}
	if run.ErrorMessage != nil {
		e.Message = *run.ErrorMessage
	}
	return e
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
