package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/requestcontext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type erroringStore struct{}

func (erroringStore) Acquire(context.Context, id.PrincipalID, time.Time, Windows) (Result, error) {
	return Result{}, errors.New("redis unreachable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLimiterUsesRequestScopedClock(t *testing.T) {
	limiter := NewLimiter(NewInMemoryStore(), DefaultWindows(), discardLogger())
	principal := id.PrincipalID(uuid.New())
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	ctx := requestcontext.WithTime(context.Background(), base)
	for i := 0; i < DefaultWindows().Short.Limit; i++ {
		res, err := limiter.TryAcquire(ctx, principal)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := limiter.TryAcquire(ctx, principal)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, WindowShort, res.Window)
	assert.Equal(t, DefaultWindows().Short.Duration, res.RetryAfter)

	// Advancing the request clock past the window admits again.
	later := requestcontext.WithTime(context.Background(), base.Add(DefaultWindows().Short.Duration))
	res, err = limiter.TryAcquire(later, principal)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiterWrapsStoreFailure(t *testing.T) {
	limiter := NewLimiter(erroringStore{}, DefaultWindows(), discardLogger())

	_, err := limiter.TryAcquire(context.Background(), id.PrincipalID(uuid.New()))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
