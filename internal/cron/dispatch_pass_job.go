package cron

import (
	"context"
	"fmt"

	"github.com/foodexpress/foodexpress-backend/internal/dispatch"
	"github.com/foodexpress/foodexpress-backend/pkg/logger"
)

type DispatchPassJobParams struct {
	Logger     *logger.Logger
	Dispatcher dispatch.Service
}

// NewDispatchPassJob wraps the assignment pass as a scheduled job.
func NewDispatchPassJob(params DispatchPassJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatch service required")
	}
	return &dispatchPassJob{
		logg:       params.Logger,
		dispatcher: params.Dispatcher,
	}, nil
}

type dispatchPassJob struct {
	logg       *logger.Logger
	dispatcher dispatch.Service
}

func (j *dispatchPassJob) Name() string { return "dispatch-pass" }

func (j *dispatchPassJob) Run(ctx context.Context) error {
	stats, err := j.dispatcher.RunPass(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending":  stats.Pending,
		"assigned": stats.Assigned,
		"deferred": stats.Deferred,
		"skipped":  stats.Skipped,
	})
	if err != nil {
		j.logg.Warn(logCtx, "dispatch pass finished with failed entries")
		return fmt.Errorf("dispatch pass: %w", err)
	}
	j.logg.Info(logCtx, "dispatch pass complete")
	return nil
}
