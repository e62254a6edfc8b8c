package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-night/internal/platform/id"
	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/internal/realtime"
	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

const (
	testAdmin = "admin-1"
	basePath  = "/leagues/L1/nights/N101"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.Seed([]night.Night{{
		ID:              "N101",
		LeagueID:        "L1",
		Date:            now,
		Status:          night.StatusActive,
		CourtsAvailable: 2,
		CourtLabels:     []string{"Center"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}})

	logger := logging.NewNop()
	admins := usecase.NewAdmins([]string{testAdmin})
	ids := id.NewUUIDGenerator()
	hub := realtime.NewHub(context.Background(), realtime.Config{}, logger)
	t.Cleanup(hub.Close)

	services := Services{
		Nights:       usecase.NewNightService(store.Nights(), hub, admins, ids),
		CheckIns:     usecase.NewCheckInService(store.Nights(), store.CheckIns(), hub),
		Partnerships: usecase.NewPartnershipService(store.Nights(), store.CheckIns(), store.Partnerships(), hub, ids),
		Matches:      usecase.NewMatchService(store.Nights(), store.Partnerships(), store.Matches(), hub, admins, ids, logger),
		Scores:       usecase.NewScoreService(store.Nights(), store.Partnerships(), store.Matches(), hub, admins),
	}
	handler := NewHandler(services, realtime.NewWebsocketServer(hub, time.Second, nil, logger), logger)
	return NewRouter(handler, logger, []string{"*"})
}

func call(t *testing.T, router http.Handler, method, path, body string) (int, wire.Response[json.RawMessage]) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out wire.Response[json.RawMessage]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec.Code, out
}

func decodeData[T any](t *testing.T, resp wire.Response[json.RawMessage]) T {
	t.Helper()
	var out T
	require.True(t, resp.Success, "error: %s", resp.Error)
	require.NoError(t, sonic.Unmarshal(resp.Data, &out))
	return out
}

func checkIn(t *testing.T, router http.Handler, players ...string) {
	t.Helper()
	for _, player := range players {
		code, resp := call(t, router, http.MethodPost, basePath+"/checkin", `{"userId":"`+player+`"}`)
		require.Equal(t, http.StatusCreated, code, resp.Error)
	}
}

func partner(t *testing.T, router http.Handler, requester, requested string) wire.Acceptance {
	t.Helper()
	code, resp := call(t, router, http.MethodPost, basePath+"/partnership-request", `{"requesterId":"`+requester+`","requestedId":"`+requested+`"}`)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	req := decodeData[wire.PartnershipRequest](t, resp)

	code, resp = call(t, router, http.MethodPost, basePath+"/partnership-accept", `{"requestId":"`+req.ID+`","userId":"`+requested+`"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	return decodeData[wire.Acceptance](t, resp)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	code, resp := call(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	health := decodeData[wire.Health](t, resp)
	assert.Equal(t, wire.Health{Status: "ok"}, health)
}

func TestCheckIn_ReturnsSummaryAndRejectsDuplicate(t *testing.T) {
	router := newTestRouter(t)

	code, resp := call(t, router, http.MethodPost, basePath+"/checkin", `{"userId":"A"}`)
	require.Equal(t, http.StatusCreated, code)
	result := decodeData[wire.CheckInResult](t, resp)
	assert.Equal(t, "A", result.CheckIn.PlayerID)
	assert.Equal(t, 1, result.Summary.CheckedInCount)

	code, resp = call(t, router, http.MethodPost, basePath+"/checkin", `{"userId":"A"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "someone else already did this: player is already checked in", resp.Error)

	code, resp = call(t, router, http.MethodDelete, basePath+"/checkin", `{"userId":"A"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	summary := decodeData[wire.Summary](t, resp)
	assert.Equal(t, 0, summary.CheckedInCount)
}

func TestRequestValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown field", path: basePath + "/checkin", body: `{"userId":"A","extra":true}`},
		{name: "malformed json", path: basePath + "/checkin", body: `{"userId":`},
		{name: "missing user", path: basePath + "/checkin", body: `{}`},
		{name: "self request", path: basePath + "/partnership-request", body: `{"requesterId":"A","requestedId":"A"}`},
		{name: "negative score", path: basePath + "/submit-score", body: `{"matchId":"M1","userId":"A","team1Score":-1,"team2Score":3}`},
		{name: "missing score", path: basePath + "/submit-score", body: `{"matchId":"M1","userId":"A","team1Score":11}`},
		{name: "bad date", path: "/leagues/L1/nights", body: `{"userId":"admin-1","date":"16/10/2026","courtsAvailable":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := call(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestNightOfOtherLeagueIsNotFound(t *testing.T) {
	router := newTestRouter(t)

	code, resp := call(t, router, http.MethodGet, "/leagues/L2/nights/N101", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "resource not found", resp.Error)

	code, _ = call(t, router, http.MethodGet, "/leagues/L2/nights/N101/realtime", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAcceptDeclinesOtherPendingRequests(t *testing.T) {
	router := newTestRouter(t)
	checkIn(t, router, "A", "B", "C")

	code, resp := call(t, router, http.MethodPost, basePath+"/partnership-request", `{"requesterId":"C","requestedId":"A"}`)
	require.Equal(t, http.StatusCreated, code, resp.Error)

	acceptance := partner(t, router, "A", "B")
	assert.Equal(t, "accepted", acceptance.Request.Status)
	assert.True(t, acceptance.Partnership.IsActive)
	require.Len(t, acceptance.Declined, 1)
	assert.Equal(t, "C", acceptance.Declined[0].RequesterID)

	code, resp = call(t, router, http.MethodGet, basePath, "")
	require.Equal(t, http.StatusOK, code)
	snapshot := decodeData[wire.Snapshot](t, resp)
	assert.Equal(t, 3, snapshot.Summary.CheckedInCount)
	assert.Equal(t, 1, snapshot.Summary.PartnershipsCount)
	assert.Equal(t, 0, snapshot.Summary.PendingRequestsCount)

	code, resp = call(t, router, http.MethodDelete, basePath+"/checkin", `{"userId":"A"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, resp.Error, "someone else already did this")
}

func TestScoreHandshake(t *testing.T) {
	router := newTestRouter(t)
	checkIn(t, router, "A", "B", "C", "D")
	partner(t, router, "A", "B")
	partner(t, router, "C", "D")

	code, resp := call(t, router, http.MethodPost, basePath+"/matches", `{"userId":"A"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "you can't do that", resp.Error)

	code, resp = call(t, router, http.MethodPost, basePath+"/matches", `{"userId":"`+testAdmin+`"}`)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	matches := decodeData[[]wire.Match](t, resp)
	require.Len(t, matches, 1)
	matchID := matches[0].ID
	assert.Equal(t, "Center", matches[0].CourtLabel)
	assert.Equal(t, "active", matches[0].Status)

	code, resp = call(t, router, http.MethodPost, basePath+"/submit-score", `{"matchId":"`+matchID+`","userId":"A","team1Score":11,"team2Score":7}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	pending := decodeData[wire.Match](t, resp)
	assert.Equal(t, "pending", pending.ScoreStatus)

	code, resp = call(t, router, http.MethodPost, basePath+"/confirm-score", `{"matchId":"`+matchID+`","userId":"B"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "you can't do that", resp.Error)

	code, resp = call(t, router, http.MethodPost, basePath+"/confirm-score", `{"matchId":"`+matchID+`","userId":"E"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = call(t, router, http.MethodPost, basePath+"/confirm-score", `{"matchId":"`+matchID+`","userId":"D"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	confirmed := decodeData[wire.Match](t, resp)
	assert.Equal(t, "completed", confirmed.Status)
	assert.Equal(t, "confirmed", confirmed.ScoreStatus)
	require.NotNil(t, confirmed.Team1Score)
	assert.Equal(t, 11, *confirmed.Team1Score)
	assert.Equal(t, 7, *confirmed.Team2Score)

	code, resp = call(t, router, http.MethodPost, basePath+"/matches/"+matchID+"/override-score", `{"userId":"`+testAdmin+`","team1Score":9,"team2Score":11}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	overridden := decodeData[wire.Match](t, resp)
	assert.Equal(t, 9, *overridden.Team1Score)
	assert.Greater(t, overridden.Version, confirmed.Version)
}

func TestCreateAndRunNight(t *testing.T) {
	router := newTestRouter(t)

	code, resp := call(t, router, http.MethodPost, "/leagues/L1/nights", `{"userId":"`+testAdmin+`","date":"2026-10-23","courtsAvailable":3,"courtLabels":["A","B"]}`)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	created := decodeData[wire.Night](t, resp)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, "2026-10-23", created.Date)

	path := "/leagues/L1/nights/" + created.ID
	code, resp = call(t, router, http.MethodPost, path+"/end", `{"userId":"`+testAdmin+`"}`)
	assert.Equal(t, http.StatusConflict, code, resp.Error)

	code, resp = call(t, router, http.MethodPost, path+"/start", `{"userId":"`+testAdmin+`"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "active", decodeData[wire.Night](t, resp).Status)

	code, resp = call(t, router, http.MethodPost, path+"/end", `{"userId":"`+testAdmin+`"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "completed", decodeData[wire.Night](t, resp).Status)

	code, resp = call(t, router, http.MethodPost, path+"/checkin", `{"userId":"A"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "someone else already did this: league night is over", resp.Error)
}
