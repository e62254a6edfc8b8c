package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/pkg/wire"
)

func TestWebsocketServerStreamsNightFrames(t *testing.T) {
	h := newTestHub(t, Config{})
	server := NewWebsocketServer(h, time.Second, nil, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.Serve(w, r, "N101")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool {
		rooms, err := h.Rooms(ctx)
		return err == nil && rooms["N101"] == 1
	}, 2*time.Second, 5*time.Millisecond)
	stats, err := server.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Rooms: 1, Subscribers: 1}, stats)

	score := 11
	h.Publish(ctx, event.Message{
		NightID: "N101",
		Event:   event.NameMatch,
		Type:    event.TypeUpdate,
		Payload: match.Match{ID: "M1", NightID: "N101", Status: match.StatusActive, ScoreStatus: match.ScorePending, PendingTeam1Score: &score},
	})

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg wire.Message
	require.NoError(t, decodeFrame(data, &msg))
	assert.Equal(t, wire.EventMatch, msg.Event)
	assert.Equal(t, wire.TypeUpdate, msg.Type)

	var payload wire.Match
	require.NoError(t, decodeFrame(msg.Payload, &payload))
	assert.Equal(t, "M1", payload.ID)
	require.NotNil(t, payload.PendingTeam1Score)
	assert.Equal(t, 11, *payload.PendingTeam1Score)

	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	require.Eventually(t, func() bool {
		rooms, err := h.Rooms(context.Background())
		return err == nil && len(rooms) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
