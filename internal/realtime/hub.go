package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/interfaces/presenter"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

var ErrHubClosed = errors.New("realtime hub is closed")

type Config struct {
	// OutboxSize is the number of frames buffered per subscriber before it is dropped.
	OutboxSize int
	InboxSize  int
}

func (c Config) normalize() Config {
	if c.OutboxSize <= 0 {
		c.OutboxSize = 64
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 1024
	}
	return c
}

type hubMsg interface{ isHubMsg() }

type subscribe struct {
	nightID  string
	clientID string
	outbox   chan []byte
	reply    chan struct{}
}

type unsubscribe struct {
	nightID  string
	clientID string
}

type publishFrame struct {
	nightID string
	frame   []byte
}

type roomStats struct {
	reply chan map[string]int
}

func (subscribe) isHubMsg()    {}
func (unsubscribe) isHubMsg()  {}
func (publishFrame) isHubMsg() {}
func (roomStats) isHubMsg()    {}

// Hub routes committed mutations to the room of their night. A room exists
// while it has at least one subscriber.
type Hub struct {
	cfg     Config
	inbox   chan hubMsg
	rooms   map[string]*room
	members map[string]int
	logger  *logging.Logger
	dropped atomic.Int64
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, cfg Config, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.normalize()
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		cfg:     cfg,
		inbox:   make(chan hubMsg, cfg.InboxSize),
		rooms:   make(map[string]*room),
		members: make(map[string]int),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

// Publish encodes msg once and queues it for the night's room. It never
// blocks: when the hub is saturated the frame is dropped and counted.
func (h *Hub) Publish(ctx context.Context, msg event.Message) {
	frame, err := encodeFrame(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "encode realtime frame failed", "night_id", msg.NightID, "event", msg.Event, "error", err)
		return
	}

	select {
	case h.inbox <- publishFrame{nightID: msg.NightID, frame: frame}:
	case <-h.ctx.Done():
	default:
		h.dropped.Add(1)
		h.logger.WarnContext(ctx, "realtime hub saturated, frame dropped", "night_id", msg.NightID, "event", msg.Event)
	}
}

// Subscribe registers a subscriber for nightID. Frames published after it
// returns are delivered in publish order until the subscription is closed or
// the subscriber falls behind.
func (h *Hub) Subscribe(ctx context.Context, nightID string) (*Subscription, error) {
	sub := &Subscription{
		ID:      uuid.NewString(),
		nightID: nightID,
		frames:  make(chan []byte, h.cfg.OutboxSize),
		hub:     h,
	}
	reply := make(chan struct{})

	select {
	case h.inbox <- subscribe{nightID: nightID, clientID: sub.ID, outbox: sub.frames, reply: reply}:
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-reply:
		return sub, nil
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
}

// Rooms reports the subscriber count of every open room.
func (h *Hub) Rooms(ctx context.Context) (map[string]int, error) {
	reply := make(chan map[string]int, 1)
	select {
	case h.inbox <- roomStats{reply: reply}:
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case out := <-reply:
		return out, nil
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dropped reports how many frames were discarded because the hub inbox was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close stops the hub and every room; open subscriptions see their frame channel closed.
func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			clear(h.rooms)
			clear(h.members)
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case subscribe:
				r := h.rooms[msg.nightID]
				if r == nil {
					r = newRoom(h.ctx, msg.nightID, h.cfg.InboxSize, h.logger)
					h.rooms[msg.nightID] = r
					h.logger.Debug("realtime room opened", "night_id", msg.nightID)
				}
				h.members[msg.nightID]++
				if !r.send(join{clientID: msg.clientID, outbox: msg.outbox}) {
					close(msg.outbox)
				}
				close(msg.reply)

			case unsubscribe:
				r := h.rooms[msg.nightID]
				if r == nil {
					break
				}
				r.send(leave{clientID: msg.clientID})
				h.members[msg.nightID]--
				if h.members[msg.nightID] <= 0 {
					r.send(stopRoom{})
					delete(h.rooms, msg.nightID)
					delete(h.members, msg.nightID)
					h.logger.Debug("realtime room closed", "night_id", msg.nightID)
				}

			case publishFrame:
				if r := h.rooms[msg.nightID]; r != nil {
					r.send(broadcast{frame: msg.frame})
				}

			case roomStats:
				out := make(map[string]int, len(h.members))
				for nightID, n := range h.members {
					out[nightID] = n
				}
				msg.reply <- out
			}
		}
	}
}

// Subscription is one subscriber's view of a night room.
type Subscription struct {
	ID      string
	nightID string
	frames  chan []byte
	hub     *Hub
	once    sync.Once
}

// Frames yields encoded realtime frames. It is closed when the subscription
// ends, the subscriber is dropped for being slow, or the hub stops.
func (s *Subscription) Frames() <-chan []byte {
	return s.frames
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.inbox <- unsubscribe{nightID: s.nightID, clientID: s.ID}:
		case <-s.hub.ctx.Done():
		}
	})
}

var framePool bytebufferpool.Pool

type frameEnvelope struct {
	Event   event.Name `json:"event"`
	Type    event.Type `json:"type"`
	Payload any        `json:"payload"`
}

func encodeFrame(msg event.Message) ([]byte, error) {
	buf := framePool.Get()
	defer framePool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(frameEnvelope{
		Event:   msg.Event,
		Type:    msg.Type,
		Payload: presenter.Payload(msg.Payload),
	}); err != nil {
		return nil, err
	}
	return append([]byte(nil), bytesTrimNewline(buf.B)...), nil
}

func bytesTrimNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}
