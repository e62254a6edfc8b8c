package client

import (
	"context"
	"net/http"
	"time"

	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/internal/platform/resilience"
	"github.com/riskibarqy/league-night/pkg/wire"
)

type SessionConfig struct {
	BaseURL    string
	LeagueID   string
	NightID    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Policy     resilience.ReconnectPolicy
	OnStatus   func(Status, error)
	Logger     *logging.Logger

	// Dialer replaces the websocket dialer, mostly in tests.
	Dialer Dialer
}

// Session ties the facade, the synchronizer and the state container of one
// night together. After every connect the state is replaced by a fresh
// snapshot before realtime frames are applied.
type Session struct {
	ref    NightRef
	facade *Facade
	state  *StateContainer
	sync   *Synchronizer
	logger *logging.Logger
}

func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	ref := NightRef{LeagueID: cfg.LeagueID, NightID: cfg.NightID}
	facade := NewFacade(FacadeConfig{
		HTTPClient: cfg.HTTPClient,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Logger:     logger,
	})

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = WebsocketDialer{
			BaseURL:    cfg.BaseURL,
			LeagueID:   cfg.LeagueID,
			NightID:    cfg.NightID,
			HTTPClient: cfg.HTTPClient,
		}
	}

	s := &Session{
		ref:    ref,
		facade: facade,
		state:  NewStateContainer(cfg.NightID),
		logger: logger.With("night_id", cfg.NightID),
	}
	s.sync = NewSynchronizer(SynchronizerConfig{
		Dialer:   dialer,
		Policy:   cfg.Policy,
		Resync:   s.Resync,
		OnStatus: cfg.OnStatus,
		Logger:   logger,
	})
	s.sync.Subscribe(Wildcard, s.apply)
	return s
}

// Resync replaces the local state with the night snapshot.
func (s *Session) Resync(ctx context.Context) error {
	snapshot, err := s.facade.Snapshot(ctx, s.ref)
	if err != nil {
		return err
	}
	s.state.Replace(snapshot)
	return nil
}

func (s *Session) Connect(ctx context.Context) error {
	return s.sync.Connect(ctx)
}

func (s *Session) Disconnect() {
	s.sync.Disconnect()
}

func (s *Session) Subscribe(event string, handler Handler) func() {
	return s.sync.Subscribe(event, handler)
}

func (s *Session) Status() (Status, error) {
	return s.sync.Status()
}

func (s *Session) Done() <-chan struct{} {
	return s.sync.Done()
}

func (s *Session) Ref() NightRef {
	return s.ref
}

func (s *Session) Facade() *Facade {
	return s.facade
}

func (s *Session) State() *StateContainer {
	return s.state
}

func (s *Session) apply(msg wire.Message) {
	if err := s.state.Apply(msg); err != nil {
		s.logger.Warn("ignoring realtime frame", "event", msg.Event, "type", msg.Type, "error", err)
	}
}
