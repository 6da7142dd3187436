// internal/workers/matching/filter-matches/handler.go
package filtermatches

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dogwalk-workers/internal/common/camunda"
	"dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/common/metrics"
	"dogwalk-workers/internal/common/observability"
	"dogwalk-workers/internal/common/validation"
	"dogwalk-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "filter-matches"

type Handler struct {
	config       *Config
	validator    *validation.Validator
	retrier      camunda.CommandRetrier
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		validator:    validator,
		obs:          obs,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

// WithRetrier sends job completions through r.
func (h *Handler) WithRetrier(r camunda.CommandRetrier) *Handler {
	h.retrier = r
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		if output, err = h.Execute(ctx, input); err == nil {
			err = h.completeJob(ctx, client, job, output)
			if err != nil {
				h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
				return
			}
		}
	}
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError("job variables", err.Error())
	}
	if err := h.validator.Check(TaskType, vars); err != nil {
		return nil, err
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError("matches", err.Error())
	}
	return &input, nil
}

// Execute drops matches that fail the parsed filters. Order is preserved.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	filter, err := matching.ParseFilter(input.RawFilters)
	if err != nil {
		return nil, err
	}

	kept := filter.Apply(input.Matches)

	h.logger.Debug("matches filtered", map[string]interface{}{
		"received": len(input.Matches),
		"kept":     len(kept),
	})

	return &Output{
		Matches:      kept,
		RemovedCount: len(input.Matches) - len(kept),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return camunda.SendWithRetry(ctx, h.retrier, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}
