// internal/workers/matching/assign-walker/handler.go
package assignwalker

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
	"dogwalk-workers/internal/models"
	"dogwalk-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "assign-walker"

type Handler struct {
	config       *Config
	store        repository.Store
	validator    *validation.Validator
	retrier      camunda.CommandRetrier
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, store repository.Store, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err == nil {
		err = camunda.SendWithRetry(ctx, h.retrier, "complete job", func(ctx context.Context) error {
			_, err := cmd.Send(ctx)
			return err
		})
	}
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
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
		return nil, errors.NewInvalidInputError("job variables", err.Error())
	}
	return &input, nil
}

// Execute moves a pending request to accepted with the chosen walker.
// Repeating an assignment that already happened succeeds without writing,
// so a redelivered job does not fail.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RequestID == "" || input.WalkerID == "" {
		return nil, errors.NewInvalidInputError("input", "requestId and walkerId are required")
	}

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.String("requestId", input.RequestID),
		attribute.String("walkerId", input.WalkerID),
	)
	defer span.End()

	request, err := h.store.GetWalkRequest(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if request.Status == models.StatusAccepted && request.WalkerID == input.WalkerID {
		h.logger.Info("walker already assigned", map[string]interface{}{
			"requestId": request.ID,
			"walkerId":  input.WalkerID,
		})
		return &Output{RequestID: request.ID, WalkerID: input.WalkerID, Status: request.Status}, nil
	}
	if request.Status != models.StatusPending {
		return nil, errors.NewWalkerAlreadyAssignedError(request.ID, string(request.Status))
	}
	if input.WalkerID == request.OwnerID {
		return nil, errors.NewInvalidInputError("walker", "an owner cannot walk their own request")
	}

	if h.config.VerifyWalker {
		if err := h.verifyWalker(ctx, input.WalkerID); err != nil {
			return nil, err
		}
	}

	updated := *request
	updated.WalkerID = input.WalkerID
	updated.Status = models.StatusAccepted
	if err := h.store.UpdateWalkRequest(ctx, &updated); err != nil {
		return nil, err
	}

	h.logger.Info("walker assigned", map[string]interface{}{
		"requestId": updated.ID,
		"walkerId":  updated.WalkerID,
		"ownerId":   updated.OwnerID,
	})

	return &Output{RequestID: updated.ID, WalkerID: updated.WalkerID, Status: updated.Status}, nil
}

func (h *Handler) verifyWalker(ctx context.Context, walkerID string) error {
	walkers, err := h.store.ListWalkers(ctx)
	if err != nil {
		return err
	}
	for _, w := range walkers {
		if w.ID == walkerID {
			return nil
		}
	}
	return errors.NewResourceNotFoundError("walkers", fmt.Sprintf("walker %s is not in the active pool", walkerID))
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
