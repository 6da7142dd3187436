package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("loading dogs: %w", NewDogNotFoundError("owner-1", "dog-9"))

	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeDogNotFound}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeNoDogsForOwner}))
	assert.True(t, HasCode(err, ErrCodeDogNotFound))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"invalid input is thrown", NewInvalidInputError("walker", "negative hourly rate"), "INVALID_INPUT", 0},
		{"weights map to invalid input", NewInvalidWeightsError("all zero"), "INVALID_INPUT", 0},
		{"pool load is retried", NewWalkerPoolLoadFailedError(stderrors.New("conn reset")), "MATCHING_UNAVAILABLE", 3},
		{"timeout is retried twice", NewTimeoutError("postgres", context.DeadlineExceeded), "MATCHING_TIMEOUT", 2},
		{"unmapped code passes through", NewAuthenticationError("bad token"), "AUTHENTICATION_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	stdErr := NewRequestNotMatchableError("req-1", "completed").WithMetadata("requestId", "req-1")

	vars := ConvertToBPMNError(stdErr).ToErrorVariables()

	assert.Equal(t, "req-1", vars["requestId"])
	assert.Equal(t, "REQUEST_NOT_MATCHABLE", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestNormalize(t *testing.T) {
	t.Run("standard error unchanged", func(t *testing.T) {
		orig := NewNoDogsForOwnerError("owner-1")
		assert.Same(t, orig, Normalize(fmt.Errorf("wrap: %w", orig)))
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		got := Normalize(fmt.Errorf("query: %w", context.DeadlineExceeded))
		assert.Equal(t, ErrCodeTimeout, got.Code)
		assert.True(t, got.Retryable)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := Normalize(stderrors.New("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "boom", got.Details)
		assert.False(t, got.Retryable)
	})
}

func TestRemainingRetries(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), remainingRetries(job(3), 3))
	assert.Equal(t, int32(3), remainingRetries(job(10), 3))
	assert.Equal(t, int32(0), remainingRetries(job(0), 3))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeInvalidInput:            "VALIDATION",
		ErrCodeSchemaValidationFailed:  "VALIDATION",
		ErrCodeWalkRequestUpdateFailed: "DATABASE",
		ErrCodeWalkerPoolLoadFailed:    "DATABASE",
		ErrCodeRequestNotMatchable:     "BUSINESS",
		ErrCodeDogNotFound:             "BUSINESS",
		ErrCodeSearchQueryFailed:       "SEARCH",
		ErrCodeTimeout:                 "INFRASTRUCTURE",
		ErrCodeInternal:                "OTHER",
	}

	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	require.True(t, IsRetryableErrorCode(ErrCodeQueryExecutionFailed))
	require.False(t, IsRetryableErrorCode(ErrCodeRequestNotMatchable))
}
