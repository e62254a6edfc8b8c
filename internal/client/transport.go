package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/coder/websocket"
	"github.com/riskibarqy/league-night/pkg/wire"
)

const defaultReadLimit = 1 << 20

var errMalformedFrame = errors.New("malformed realtime frame")

// Conn is one realtime connection for one night.
type Conn interface {
	Read(ctx context.Context) (wire.Message, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// WebsocketDialer connects to the realtime endpoint of one night.
type WebsocketDialer struct {
	BaseURL    string
	LeagueID   string
	NightID    string
	HTTPClient *http.Client
}

func (d WebsocketDialer) Dial(ctx context.Context) (Conn, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(d.BaseURL), "/") +
		"/leagues/" + url.PathEscape(d.LeagueID) +
		"/nights/" + url.PathEscape(d.NightID) + "/realtime"

	conn, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{HTTPClient: d.HTTPClient})
	if err != nil {
		return nil, fmt.Errorf("dial realtime night_id=%s: %w", d.NightID, err)
	}
	conn.SetReadLimit(defaultReadLimit)
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) Read(ctx context.Context) (wire.Message, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return wire.Message{}, err
	}
	var msg wire.Message
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return wire.Message{}, fmt.Errorf("%w: %v", errMalformedFrame, err)
	}
	return msg, nil
}

func (c *websocketConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
