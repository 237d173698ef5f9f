package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"affiliateScope/internal/config"
	"affiliateScope/internal/flipside"
	"affiliateScope/internal/model"
	"affiliateScope/internal/pipeline"
	"affiliateScope/internal/poll"
	"affiliateScope/internal/query"
	"affiliateScope/internal/storage"
)

func newPipeline(ctx context.Context, cfg config.Config, region storage.Region, logger *zap.Logger) (*pipeline.Pipeline, func(), error) {
	if cfg.APIKey == "" {
		logger.Warn("api key is empty, the service will reject requests")
	}

	client, err := flipside.NewClient(ctx, flipside.Config{
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey,
		HTTPTimeout: cfg.HTTPTimeout,
		RateLimit:   cfg.RateLimit,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect query service: %w", err)
	}

	builder := query.NewBuilder(query.Options{
		ResultTTLHours: cfg.ResultTTLHours,
		MaxAgeMinutes:  cfg.MaxAgeMinutes,
		Tags:           cfg.Tags,
		DataSource:     cfg.DataSource,
		DataProvider:   cfg.DataProvider,
	})

	p := pipeline.New(pipeline.Config{
		Poll: poll.Config{
			Interval:          cfg.PollInterval,
			MaxAttempts:       cfg.MaxAttempts,
			IgnoreFailedState: cfg.IgnoreFailedState,
		},
		Page:    model.PageRequest{Number: model.DefaultPageNumber, Size: cfg.PageSize},
		Timeout: cfg.PollTimeout,
	}, builder, client, region, logger)

	return p, client.Close, nil
}
