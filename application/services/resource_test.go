package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "braingraph/pkg/errors"
)

func TestResource_Lifecycle(t *testing.T) {
	tests := []struct {
		name      string
		loader    func(ctx context.Context) (int, error)
		wantState ResourceState
		wantData  int
		wantErr   bool
	}{
		{
			name:      "success",
			loader:    func(ctx context.Context) (int, error) { return 42, nil },
			wantState: StateSuccess,
			wantData:  42,
		},
		{
			name: "network failure",
			loader: func(ctx context.Context) (int, error) {
				return 0, pkgerrors.NewNetworkError("fetch failed", errors.New("refused"))
			},
			wantState: StateError,
			wantErr:   true,
		},
		{
			name:      "cancelled keeps idle",
			loader:    func(ctx context.Context) (int, error) { return 0, pkgerrors.NewCancelledError("explore") },
			wantState: StateIdle,
		},
		{
			name:      "panic becomes internal error",
			loader:    func(ctx context.Context) (int, error) { panic("bad payload") },
			wantState: StateError,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r := NewResource[int]("test", zap.NewNop())

			// Act
			snap := r.Load(context.Background(), tt.loader)

			// Assert
			assert.Equal(t, tt.wantState, snap.State)
			assert.Equal(t, tt.wantData, snap.Data)
			assert.Equal(t, tt.wantErr, snap.Err != nil)
		})
	}
}

func TestResource_CancellationRestoresPreviousSuccess(t *testing.T) {
	r := NewResource[string]("explore", zap.NewNop())
	r.Load(context.Background(), func(ctx context.Context) (string, error) { return "graph", nil })

	snap := r.Load(context.Background(), func(ctx context.Context) (string, error) {
		return "", context.Canceled
	})

	assert.Equal(t, StateSuccess, snap.State)
	assert.Equal(t, "graph", snap.Data)
	assert.NoError(t, snap.Err)
}

func TestResource_RetryRerunsLastLoader(t *testing.T) {
	// Arrange
	r := NewResource[int]("stats", zap.NewNop())
	attempts := 0
	loader := func(ctx context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, pkgerrors.NewNetworkError("fetch failed", nil)
		}
		return attempts, nil
	}

	// Act
	first := r.Load(context.Background(), loader)
	second := r.Retry(context.Background())

	// Assert
	require.Equal(t, StateError, first.State)
	assert.True(t, pkgerrors.IsRetryable(first.Err))
	assert.Equal(t, StateSuccess, second.State)
	assert.Equal(t, 2, second.Data)
}

func TestResource_RetryWithoutLoaderIsNoop(t *testing.T) {
	r := NewResource[int]("idle", nil)

	snap := r.Retry(context.Background())

	assert.Equal(t, StateIdle, snap.State)
}

func TestResource_ResetForgetsData(t *testing.T) {
	r := NewResource[int]("map", zap.NewNop())
	r.Load(context.Background(), func(ctx context.Context) (int, error) { return 1, nil })

	r.Reset()

	snap := r.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Zero(t, snap.Data)
	assert.Equal(t, StateIdle, r.Retry(context.Background()).State)
}
