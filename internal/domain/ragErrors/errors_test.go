package ragErrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidInput("search", "limit %d out of range", 500))

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrIndexUnavailable))
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestWrap_PreservesCause(t *testing.T) {
	err := Wrap(KindEmbedderUnavailable, "embed", context.DeadlineExceeded)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, ErrEmbedderUnavailable))
	assert.Contains(t, err.Error(), "embed")
	assert.Contains(t, err.Error(), "deadline")
}

func TestEnsureKind(t *testing.T) {
	typed := New(KindEmbedderContractViolation, "ingest", "expected 3 vectors, got 2")
	assert.Same(t, typed, EnsureKind(KindIndexUnavailable, "upsert", typed))

	wrapped := EnsureKind(KindIndexUnavailable, "upsert", errors.New("conn refused"))
	assert.Equal(t, KindIndexUnavailable, KindOf(wrapped))
	assert.Nil(t, EnsureKind(KindIndexUnavailable, "upsert", nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrEmbedderUnavailable, http.StatusServiceUnavailable},
		{ErrIndexUnavailable, http.StatusServiceUnavailable},
		{ErrEmbedderContractViolation, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}
