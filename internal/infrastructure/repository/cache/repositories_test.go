package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-night/internal/domain/night"
	nightmock "github.com/riskibarqy/league-night/internal/mocks/domain/night"
)

func TestNightRepository_CachesUntilStatusChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := nightmock.NewRepository(t)
	repo := NewNightRepository(next, time.Minute)

	scheduled := night.Night{ID: "n1", LeagueID: "l1", Status: night.StatusScheduled}
	active := scheduled
	active.Status = night.StatusActive
	at := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

	next.On("GetByID", mock.Anything, "n1").Return(scheduled, true, nil).Once()
	next.On("UpdateStatus", mock.Anything, "n1", night.StatusScheduled, night.StatusActive, at).Return(active, nil).Once()
	next.On("GetByID", mock.Anything, "n1").Return(active, true, nil).Once()
	next.On("Summarize", mock.Anything, "n1").Return(night.Summary{CheckedInCount: 3}, nil).Twice()

	for range 3 {
		got, exists, err := repo.GetByID(ctx, "n1")
		require.NoError(t, err)
		require.True(t, exists)
		require.Equal(t, night.StatusScheduled, got.Status)
	}

	_, err := repo.UpdateStatus(ctx, "n1", night.StatusScheduled, night.StatusActive, at)
	require.NoError(t, err)

	got, _, err := repo.GetByID(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, night.StatusActive, got.Status)

	for range 2 {
		summary, err := repo.Summarize(ctx, "n1")
		require.NoError(t, err)
		require.Equal(t, 3, summary.CheckedInCount)
	}
}
