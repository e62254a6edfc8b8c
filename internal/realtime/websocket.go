package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/riskibarqy/league-night/internal/platform/logging"
)

type WebsocketServer struct {
	hub            *Hub
	writeTimeout   time.Duration
	originPatterns []string
	logger         *logging.Logger
}

func NewWebsocketServer(hub *Hub, writeTimeout time.Duration, originPatterns []string, logger *logging.Logger) *WebsocketServer {
	if logger == nil {
		logger = logging.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &WebsocketServer{
		hub:            hub,
		writeTimeout:   writeTimeout,
		originPatterns: append([]string(nil), originPatterns...),
		logger:         logger,
	}
}

// Serve upgrades the request and streams the night's frames until the peer
// goes away, the subscriber falls behind, or the hub stops. The channel is
// server to client only; anything the client sends is discarded.
func (s *WebsocketServer) Serve(w http.ResponseWriter, r *http.Request, nightID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket accept failed", "night_id", nightID, "error", err)
		return
	}
	defer conn.CloseNow()

	sub, err := s.hub.Subscribe(r.Context(), nightID)
	if err != nil {
		_ = conn.Close(websocket.StatusTryAgainLater, "realtime unavailable")
		return
	}
	defer sub.Close()

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return

		case frame, ok := <-sub.Frames():
			if !ok {
				_ = conn.Close(websocket.StatusTryAgainLater, "subscriber dropped")
				return
			}
			if err := s.write(ctx, conn, frame); err != nil {
				s.logger.DebugContext(ctx, "websocket write failed", "night_id", nightID, "error", err)
				return
			}
		}
	}
}

func (s *WebsocketServer) write(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}

// Stats is a point-in-time view of the hub's rooms.
type Stats struct {
	Rooms       int
	Subscribers int
	Dropped     int64
}

func (s *WebsocketServer) Stats(ctx context.Context) (Stats, error) {
	rooms, err := s.hub.Rooms(ctx)
	if err != nil {
		return Stats{Dropped: s.hub.Dropped()}, err
	}
	out := Stats{Rooms: len(rooms), Dropped: s.hub.Dropped()}
	for _, n := range rooms {
		out.Subscribers += n
	}
	return out, nil
}
