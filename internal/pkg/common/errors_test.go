package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorWrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("loading list: %w", ErrServiceUnavailable.Wrap(cause))

	assert.True(t, errors.Is(err, ErrServiceUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "loading list: 服務暫時不可用: dial tcp: connection refused", err.Error())

	// Wrap 不修改預定義錯誤
	assert.Nil(t, ErrServiceUnavailable.Err)
}

func TestToErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		debug       bool
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{
			name:       "custom error",
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   ErrCodeNotFound,
		},
		{
			name:        "wrapped custom error in debug",
			err:         fmt.Errorf("outer: %w", ErrAIServiceError.Wrap(errors.New("502 from upstream"))),
			debug:       true,
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    "AI_SERVICE_ERROR",
			wantDetails: "502 from upstream",
		},
		{
			name:       "details hidden outside debug",
			err:        ErrAIServiceError.Wrap(errors.New("502 from upstream")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "AI_SERVICE_ERROR",
		},
		{
			name:       "validation error",
			err:        NewValidationError("lines is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidRequest,
		},
		{
			name:        "plain error",
			err:         errors.New("boom"),
			debug:       true,
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrCodeInternalError,
			wantDetails: "boom",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, resp := ToErrorResponse(tc.err, tc.debug)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, resp.Code)
			assert.Equal(t, tc.wantDetails, resp.Details)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", NewValidationError("bad"))))
	assert.False(t, IsValidationError(errors.New("bad")))
}
