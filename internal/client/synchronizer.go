package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/internal/platform/resilience"
	"github.com/riskibarqy/league-night/pkg/wire"
)

type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
	StatusDisconnected Status = "disconnected"
)

// Wildcard subscribes to every event.
const Wildcard = "*"

type Handler func(wire.Message)

// ResyncFunc runs after every successful connect, before frames are dispatched.
type ResyncFunc func(ctx context.Context) error

type SynchronizerConfig struct {
	Dialer   Dialer
	Policy   resilience.ReconnectPolicy
	Resync   ResyncFunc
	OnStatus func(Status, error)
	Logger   *logging.Logger
}

type subscription struct {
	id      uint64
	event   string
	handler Handler
}

// Synchronizer keeps one realtime connection open and fans frames out to
// subscribers. It holds no night state of its own.
type Synchronizer struct {
	dialer   Dialer
	policy   resilience.ReconnectPolicy
	resync   ResyncFunc
	onStatus func(Status, error)
	logger   *logging.Logger

	mu      sync.Mutex
	status  Status
	lastErr error
	subs    []subscription
	nextID  uint64
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewSynchronizer(cfg SynchronizerConfig) *Synchronizer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Synchronizer{
		dialer:   cfg.Dialer,
		policy:   resilience.NormalizeReconnectPolicy(cfg.Policy),
		resync:   cfg.Resync,
		onStatus: cfg.OnStatus,
		logger:   logger,
		status:   StatusIdle,
	}
}

// Subscribe registers handler for event, or for every event with Wildcard.
// The returned func removes the registration.
func (s *Synchronizer) Subscribe(event string, handler Handler) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, event: event, handler: handler})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Status returns the connection status and the error that caused it. After
// reconnection gives up the error is a *TransportError.
func (s *Synchronizer) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastErr
}

// Connect starts the connection loop. It returns immediately; progress is
// reported through Status and OnStatus.
func (s *Synchronizer) Connect(ctx context.Context) error {
	if s.dialer == nil {
		return errors.New("realtime dialer is required")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.running = true
	s.mu.Unlock()

	s.setStatus(StatusConnecting, nil)
	go s.run(runCtx, done)
	return nil
}

// Disconnect stops the connection and any pending reconnect timer.
func (s *Synchronizer) Disconnect() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.setStatus(StatusDisconnected, nil)
}

// Done is closed when the connection loop exits. It is nil before Connect.
func (s *Synchronizer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Synchronizer) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.mu.Unlock()
		close(done)
	}()

	schedule := resilience.NewSchedule(s.policy)
	for {
		err := s.session(ctx, schedule)
		if ctx.Err() != nil {
			return
		}

		delay, ok := schedule.Next()
		if !ok {
			s.logger.Warn("realtime reconnect gave up", "attempts", schedule.Attempts(), "error", err)
			s.setStatus(StatusDisconnected, &TransportError{Attempts: schedule.Attempts(), Err: err})
			return
		}
		s.logger.Debug("realtime reconnect scheduled", "attempt", schedule.Attempts(), "delay", delay, "error", err)
		s.setStatus(StatusReconnecting, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session dials, resyncs and consumes frames until the connection fails.
func (s *Synchronizer) session(ctx context.Context, schedule *resilience.Schedule) error {
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if s.resync != nil {
		if err := s.resync(ctx); err != nil {
			return fmt.Errorf("resync after connect: %w", err)
		}
	}
	schedule.Reset()
	s.setStatus(StatusConnected, nil)

	for {
		msg, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, errMalformedFrame) {
				s.logger.Warn("skipping malformed realtime frame", "error", err)
				continue
			}
			return err
		}
		s.dispatch(msg)
	}
}

func (s *Synchronizer) dispatch(msg wire.Message) {
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.event == Wildcard || sub.event == msg.Event {
			handlers = append(handlers, sub.handler)
		}
	}
	s.mu.Unlock()

	for _, h := range handlers {
		s.invoke(h, msg)
	}
}

func (s *Synchronizer) invoke(h Handler, msg wire.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("realtime handler panicked", "event", msg.Event, "type", msg.Type, "panic", rec)
		}
	}()
	h(msg)
}

func (s *Synchronizer) setStatus(status Status, err error) {
	s.mu.Lock()
	s.status = status
	s.lastErr = err
	notify := s.onStatus
	s.mu.Unlock()

	if notify != nil {
		notify(status, err)
	}
}
