// internal/workers/matching/find-compatible-walkers/handler.go
package findcompatiblewalkers

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
	"dogwalk-workers/internal/models"
	"dogwalk-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "find-compatible-walkers"

// PoolNarrower trims a walker pool to candidates near a request.
type PoolNarrower interface {
	Narrow(ctx context.Context, pool []models.WalkerProfile, request models.WalkRequest, radiusKm float64) []models.WalkerProfile
}

type HandlerOptions struct {
	Config        *Config
	Store         repository.Store
	Search        PoolNarrower           // optional
	Retrier       camunda.CommandRetrier // optional
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config       *Config
	engine       *matching.Engine
	store        repository.Store
	search       PoolNarrower
	retrier      camunda.CommandRetrier
	validator    *validation.Validator
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%s: config is required", TaskType)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%s: store is required", TaskType)
	}

	engine, err := matching.NewEngine(opts.Config.Weights)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       opts.Config,
		engine:       engine,
		store:        opts.Store,
		search:       opts.Search,
		retrier:      opts.Retrier,
		validator:    opts.Validator,
		obs:          opts.Observability,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}, nil
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

	if err := h.completeJob(ctx, client, job, output); err != nil {
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

// Execute runs one match run: load the request, the owner's dogs and the
// walker pool, score per dog, merge, filter and truncate.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	runID := uuid.NewString()

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.String("matchRunId", runID),
		attribute.String("ownerId", input.OwnerID),
	)
	defer span.End()

	output, err := h.execute(ctx, runID, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("candidateCount", output.CandidateCount),
		attribute.Int("dogCount", output.DogCount),
		attribute.Int("matchCount", len(output.Matches)),
	)
	return output, nil
}

func (h *Handler) execute(ctx context.Context, runID string, input *Input) (*Output, error) {
	if input.OwnerID == "" {
		return nil, errors.NewInvalidInputError("input", "ownerId is required")
	}

	engine, err := h.engineFor(input.Weights)
	if err != nil {
		return nil, err
	}

	filter, err := matching.ParseFilter(input.Filters)
	if err != nil {
		return nil, err
	}

	request, err := h.loadRequest(ctx, input)
	if err != nil {
		return nil, err
	}
	if !request.Status.Matchable() {
		return nil, errors.NewRequestNotMatchableError(request.ID, string(request.Status))
	}

	dogs, err := h.loadDogs(ctx, input.OwnerID, h.dogID(input, request))
	if err != nil {
		return nil, err
	}

	pool, err := h.store.ListWalkers(ctx)
	if err != nil {
		return nil, err
	}
	pool = h.validPool(pool)
	if h.search != nil {
		pool = h.search.Narrow(ctx, pool, *request, h.config.CandidateRadiusKm)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewTimeoutError("matching", err)
	}

	scoringStart := time.Now()
	perDog := make([][]matching.MatchResult, 0, len(dogs))
	for _, dog := range dogs {
		results, err := engine.FindCompatibleMatches(pool, *request, input.OwnerID, dog, 0)
		if err != nil {
			return nil, err
		}
		perDog = append(perDog, results)
	}
	ranked := matching.MergeResults(perDog...)
	metrics.MatchRunDuration.Observe(time.Since(scoringStart).Seconds())
	metrics.MatchCandidatesScored.Observe(float64(len(pool) * len(dogs)))

	matches := filter.Apply(ranked)
	if limit := h.config.resultLimit(input.MaxResults); limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	metrics.MatchResultsReturned.Observe(float64(len(matches)))
	if len(matches) > 0 {
		h.obs.RecordTopScore(ctx, matches[0].Score)
	}

	h.logger.Info("match run completed", map[string]interface{}{
		"matchRunId":     runID,
		"ownerId":        input.OwnerID,
		"requestId":      request.ID,
		"dogCount":       len(dogs),
		"candidateCount": len(pool),
		"ranked":         len(ranked),
		"returned":       len(matches),
	})

	return &Output{
		MatchRunID:     runID,
		Matches:        matches,
		CandidateCount: len(pool),
		DogCount:       len(dogs),
	}, nil
}

// validPool drops walkers that fail validation so one bad row cannot fail
// every match run.
func (h *Handler) validPool(pool []models.WalkerProfile) []models.WalkerProfile {
	valid := pool[:0:0]
	for _, w := range pool {
		if err := w.Validate(); err != nil {
			metrics.InvalidWalkersSkipped.Inc()
			h.logger.Warn("skipping invalid walker", map[string]interface{}{
				"walkerId": w.ID,
				"error":    err,
			})
			continue
		}
		valid = append(valid, w)
	}
	return valid
}

// engineFor returns the shared engine, or a one-off engine when the job
// overrides weights. Job weights are layered over the configured ones.
func (h *Handler) engineFor(overrides map[string]float64) (*matching.Engine, error) {
	if len(overrides) == 0 {
		return h.engine, nil
	}
	parsed, err := matching.ParseWeights(overrides)
	if err != nil {
		return nil, err
	}
	combined := make(matching.Weights, len(h.config.Weights)+len(parsed))
	for f, v := range h.config.Weights {
		combined[f] = v
	}
	for f, v := range parsed {
		combined[f] = v
	}
	return matching.NewEngine(combined)
}

func (h *Handler) loadRequest(ctx context.Context, input *Input) (*models.WalkRequest, error) {
	switch {
	case input.RequestID != "":
		request, err := h.store.GetWalkRequest(ctx, input.RequestID)
		if err != nil {
			return nil, err
		}
		if request.OwnerID != input.OwnerID {
			return nil, errors.NewInvalidInputError("request",
				fmt.Sprintf("walk request %s does not belong to owner %s", request.ID, input.OwnerID))
		}
		return request, nil

	case input.Request != nil:
		request := *input.Request
		if request.OwnerID == "" {
			request.OwnerID = input.OwnerID
		}
		if request.OwnerID != input.OwnerID {
			return nil, errors.NewInvalidInputError("request", "inline request belongs to a different owner")
		}
		if err := request.Validate(); err != nil {
			return nil, err
		}
		return &request, nil

	default:
		return nil, errors.NewInvalidInputError("input", "either requestId or request is required")
	}
}

// dogID picks the dog to match: the job's dogId, else the request's dog.
// Empty means every dog the owner has.
func (h *Handler) dogID(input *Input, request *models.WalkRequest) string {
	if input.DogID != "" {
		return input.DogID
	}
	return request.DogID
}

func (h *Handler) loadDogs(ctx context.Context, ownerID, dogID string) ([]models.DogProfile, error) {
	dogs, err := h.store.ListDogsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(dogs) == 0 {
		return nil, errors.NewNoDogsForOwnerError(ownerID)
	}
	if dogID == "" {
		return dogs, nil
	}
	for _, d := range dogs {
		if d.ID == dogID {
			return []models.DogProfile{d}, nil
		}
	}
	return nil, errors.NewDogNotFoundError(ownerID, dogID)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	err = camunda.SendWithRetry(ctx, h.retrier, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		return err
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"matchRunId": output.MatchRunID,
		"matches":    len(output.Matches),
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
