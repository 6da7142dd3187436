package assignwalker

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"dogwalk-workers/internal/common/config"
	"dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/common/validation"
	"dogwalk-workers/internal/models"
	"dogwalk-workers/internal/repository/repotest"
	"dogwalk-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: time.Second, VerifyWalker: true}
}

func createTestStore() *repotest.MemoryStore {
	s := repotest.NewMemoryStore()
	s.Walkers = []models.WalkerProfile{
		{ID: "w-1", Experience: models.ExperienceExpert},
		{ID: "w-2", Experience: models.ExperienceBeginner},
	}
	s.PutRequest(models.WalkRequest{ID: "req-pending", OwnerID: "owner-1", DogID: "dog-1", Status: models.StatusPending})
	s.PutRequest(models.WalkRequest{ID: "req-accepted", OwnerID: "owner-1", DogID: "dog-1", WalkerID: "w-1", Status: models.StatusAccepted})
	s.PutRequest(models.WalkRequest{ID: "req-done", OwnerID: "owner-1", DogID: "dog-1", WalkerID: "w-2", Status: models.StatusCompleted})
	return s
}

func newTestHandler(t *testing.T, store *repotest.MemoryStore) *Handler {
	t.Helper()
	return NewHandler(createTestConfig(), store, nil, nil, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestExecute_AssignsPendingRequest(t *testing.T) {
	store := createTestStore()
	h := newTestHandler(t, store)

	out, err := h.Execute(context.Background(), &Input{RequestID: "req-pending", WalkerID: "w-2"})
	require.NoError(t, err)

	assert.Equal(t, &Output{RequestID: "req-pending", WalkerID: "w-2", Status: models.StatusAccepted}, out)
	require.Len(t, store.Updates, 1)
	assert.Equal(t, "w-2", store.Requests["req-pending"].WalkerID)
	assert.Equal(t, models.StatusAccepted, store.Requests["req-pending"].Status)
}

func TestExecute_RepeatedAssignmentIsIdempotent(t *testing.T) {
	store := createTestStore()
	h := newTestHandler(t, store)

	out, err := h.Execute(context.Background(), &Input{RequestID: "req-accepted", WalkerID: "w-1"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, out.Status)
	assert.Empty(t, store.Updates)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		mutate   func(*repotest.MemoryStore)
		wantCode errors.ErrorCode
	}{
		{"missing walker id", &Input{RequestID: "req-pending"}, nil, errors.ErrCodeInvalidInput},
		{"unknown request", &Input{RequestID: "nope", WalkerID: "w-1"}, nil, errors.ErrCodeResourceNotFound},
		{"accepted by someone else", &Input{RequestID: "req-accepted", WalkerID: "w-2"}, nil, errors.ErrCodeWalkerAlreadyAssigned},
		{"completed request", &Input{RequestID: "req-done", WalkerID: "w-2"}, nil, errors.ErrCodeWalkerAlreadyAssigned},
		{"owner assigning themselves", &Input{RequestID: "req-pending", WalkerID: "owner-1"}, nil, errors.ErrCodeInvalidInput},
		{"walker not in pool", &Input{RequestID: "req-pending", WalkerID: "w-404"}, nil, errors.ErrCodeResourceNotFound},
		{"pool unavailable", &Input{RequestID: "req-pending", WalkerID: "w-1"},
			func(s *repotest.MemoryStore) { s.WalkersErr = errors.NewWalkerPoolLoadFailedError(stderrors.New("down")) },
			errors.ErrCodeWalkerPoolLoadFailed},
		{"update fails", &Input{RequestID: "req-pending", WalkerID: "w-1"},
			func(s *repotest.MemoryStore) {
				s.UpdateErr = errors.NewWalkRequestUpdateFailedError("req-pending", stderrors.New("conn reset"))
			},
			errors.ErrCodeWalkRequestUpdateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStore()
			if tt.mutate != nil {
				tt.mutate(store)
			}
			h := newTestHandler(t, store)

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, models.StatusPending, store.Requests["req-pending"].Status)
		})
	}
}

func TestExecute_SkipsPoolCheckWhenDisabled(t *testing.T) {
	store := createTestStore()
	cfg := createTestConfig()
	cfg.VerifyWalker = false
	h := NewHandler(cfg, store, nil, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{RequestID: "req-pending", WalkerID: "w-new"})
	require.NoError(t, err)
	assert.Equal(t, "w-new", out.WalkerID)
}

// ==========================
// Input parsing
// ==========================

func TestParseInput(t *testing.T) {
	v, err := validation.NewValidator(registry.Builtin().InputSchemas())
	require.NoError(t, err)
	h := NewHandler(createTestConfig(), createTestStore(), v, nil, logger.NewTestLogger(t))

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"requestId":"req-pending","walkerId":"w-1","ownerId":"owner-1"}`}}
	input, err := h.parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, &Input{RequestID: "req-pending", WalkerID: "w-1"}, input)

	bad := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `{"requestId":"req-pending","walkerId":""}`}}
	_, err = h.parseInput(bad)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSchemaValidationFailed))
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(&config.Config{})
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.VerifyWalker)
}
