package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

const DefaultChangeFeedChannel = "league_night_changes"

// ChangeFeed forwards row change notifications raised by the database
// triggers to a publisher. While it runs the services are wired with a no-op
// publisher.
type ChangeFeed struct {
	dsn          string
	channel      string
	publisher    event.Publisher
	logger       *logging.Logger
	minReconnect time.Duration
	maxReconnect time.Duration
	pingInterval time.Duration
}

func NewChangeFeed(dsn, channel string, publisher event.Publisher, logger *logging.Logger) *ChangeFeed {
	if logger == nil {
		logger = logging.Default()
	}
	if channel == "" {
		channel = DefaultChangeFeedChannel
	}
	return &ChangeFeed{
		dsn:          dsn,
		channel:      channel,
		publisher:    publisher,
		logger:       logger,
		minReconnect: 500 * time.Millisecond,
		maxReconnect: 30 * time.Second,
		pingInterval: 90 * time.Second,
	}
}

// Run listens until ctx is cancelled. pq.Listener reconnects on its own; a
// reconnect is reported with a nil notification.
func (f *ChangeFeed) Run(ctx context.Context) error {
	listener := pq.NewListener(f.dsn, f.minReconnect, f.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			f.logger.Warn("change feed connection problem", "channel", f.channel, "error", err)
		case pq.ListenerEventReconnected:
			f.logger.Info("change feed reconnected", "channel", f.channel)
		}
	})
	defer listener.Close()

	if err := listener.Listen(f.channel); err != nil {
		return fmt.Errorf("listen %s: %w", f.channel, err)
	}
	f.logger.Info("change feed listening", "channel", f.channel)

	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case n := <-listener.Notify:
			if n == nil {
				// Notifications raised while disconnected are lost; subscribers resync on their own reconnect.
				continue
			}
			msg, err := decodeNotification(n.Extra)
			if err != nil {
				f.logger.WarnContext(ctx, "discarding malformed change notification", "channel", f.channel, "error", err)
				continue
			}
			f.publisher.Publish(ctx, msg)

		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					f.logger.Warn("change feed ping failed", "channel", f.channel, "error", err)
				}
			}()
		}
	}
}

type notification struct {
	NightID string          `json:"nightId"`
	Event   string          `json:"event"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func decodeNotification(raw string) (event.Message, error) {
	var n notification
	if err := sonic.UnmarshalString(raw, &n); err != nil {
		return event.Message{}, fmt.Errorf("decode notification: %w", err)
	}
	if n.NightID == "" || n.Event == "" || n.Type == "" {
		return event.Message{}, fmt.Errorf("decode notification: night id, event and type are required")
	}
	switch event.Type(n.Type) {
	case event.TypeCreate, event.TypeUpdate, event.TypeDelete:
	default:
		return event.Message{}, fmt.Errorf("decode notification: unknown type %q", n.Type)
	}
	return event.Message{
		NightID: n.NightID,
		Event:   event.Name(n.Event),
		Type:    event.Type(n.Type),
		Payload: n.Payload,
	}, nil
}
