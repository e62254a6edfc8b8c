package presenter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNight_FormatsDateAndCopiesLabels(t *testing.T) {
	labels := []string{"Center", "Court B"}
	n := night.Night{
		ID:              "N101",
		LeagueID:        "L1",
		Date:            time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:          night.StatusActive,
		CourtsAvailable: 2,
		CourtLabels:     labels,
	}

	got := Night(n)
	assert.Equal(t, "2026-03-05", got.Date)
	assert.Equal(t, "active", got.Status)

	labels[0] = "changed"
	assert.Equal(t, "Center", got.CourtLabels[0])
}

func TestMatch_CopiesScores(t *testing.T) {
	score := 11
	m := match.Match{ID: "M1", Status: match.StatusActive, ScoreStatus: match.ScorePending, PendingTeam1Score: &score, Version: 4}

	got := Match(m)
	require.NotNil(t, got.PendingTeam1Score)
	assert.Nil(t, got.PendingTeam2Score)
	assert.Equal(t, int64(4), got.Version)

	score = 3
	assert.Equal(t, 11, *got.PendingTeam1Score)
}

func TestPayload(t *testing.T) {
	t.Run("domain rows map to wire shapes", func(t *testing.T) {
		got := Payload(match.Match{ID: "M1", Status: match.StatusCompleted})
		wm, ok := got.(wire.Match)
		require.True(t, ok)
		assert.Equal(t, "completed", wm.Status)
	})

	t.Run("raw payloads pass through", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"M1"}`)
		got := Payload(raw)
		assert.Equal(t, raw, got)
	})
}

func TestSlices_NeverNil(t *testing.T) {
	assert.NotNil(t, CheckIns(nil))
	assert.NotNil(t, Requests(nil))
	assert.NotNil(t, Partnerships(nil))
	assert.NotNil(t, Matches(nil))
}
