package realtime

import (
	"context"
	"sync"

	"github.com/riskibarqy/league-night/internal/platform/logging"
)

type roomMsg interface{ isRoomMsg() }

type join struct {
	clientID string
	outbox   chan []byte
}

type leave struct{ clientID string }

type broadcast struct{ frame []byte }

type stopRoom struct{}

func (join) isRoomMsg()      {}
func (leave) isRoomMsg()     {}
func (broadcast) isRoomMsg() {}
func (stopRoom) isRoomMsg()  {}

// room fans frames of one night out to its subscribers. Only the room
// goroutine touches clients.
type room struct {
	nightID string
	inbox   chan roomMsg
	clients map[string]chan []byte
	logger  *logging.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	// mu orders senders against shutdown: once closed is set nothing new
	// lands in inbox, so the final drain sees every accepted join.
	mu     sync.Mutex
	closed bool
}

func newRoom(parent context.Context, nightID string, inboxSize int, logger *logging.Logger) *room {
	ctx, cancel := context.WithCancel(parent)
	r := &room{
		nightID: nightID,
		inbox:   make(chan roomMsg, inboxSize),
		clients: make(map[string]chan []byte),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case join:
				r.clients[msg.clientID] = msg.outbox

			case leave:
				if ch, ok := r.clients[msg.clientID]; ok {
					close(ch)
					delete(r.clients, msg.clientID)
				}

			case broadcast:
				r.broadcast(msg.frame)

			case stopRoom:
				r.shutdown()
				return
			}
		}
	}
}

func (r *room) broadcast(frame []byte) {
	for id, ch := range r.clients {
		select {
		case ch <- frame:
		default:
			// Slow subscriber: its transport closes and the client resyncs on reconnect.
			close(ch)
			delete(r.clients, id)
			r.logger.Warn("dropping slow realtime subscriber", "night_id", r.nightID, "client_id", id)
		}
	}
}

func (r *room) shutdown() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	for {
		select {
		case m := <-r.inbox:
			switch msg := m.(type) {
			case join:
				r.clients[msg.clientID] = msg.outbox
			case leave:
				if ch, ok := r.clients[msg.clientID]; ok {
					close(ch)
					delete(r.clients, msg.clientID)
				}
			}
		default:
			for id, ch := range r.clients {
				close(ch)
				delete(r.clients, id)
			}
			return
		}
	}
}

// send hands msg to the room and reports whether the room accepted it. A
// rejected join leaves closing its outbox to the caller.
func (r *room) send(msg roomMsg) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	select {
	case r.inbox <- msg:
		return true
	case <-r.ctx.Done():
		return false
	}
}
