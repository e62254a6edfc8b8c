package client

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/internal/platform/resilience"
	"github.com/riskibarqy/league-night/pkg/wire"
)

var fixtureTime = time.Date(2026, 10, 16, 19, 0, 0, 0, time.UTC)

type fakeConn struct {
	frames chan wire.Message
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan wire.Message, 16), closed: make(chan struct{})}
}

func (c *fakeConn) Read(ctx context.Context) (wire.Message, error) {
	select {
	case msg := <-c.frames:
		return msg, nil
	case <-c.closed:
		return wire.Message{}, io.EOF
	case <-ctx.Done():
		return wire.Message{}, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

type dialResult struct {
	conn *fakeConn
	err  error
}

// fakeDialer hands out queued results; Dial blocks until one is queued.
type fakeDialer struct {
	results chan dialResult

	mu    sync.Mutex
	dials int
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{results: make(chan dialResult, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context) (Conn, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()

	select {
	case r := <-d.results:
		if r.err != nil {
			return nil, r.err
		}
		return r.conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *fakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// statusRecorder collects status changes for waiting in tests.
type statusRecorder struct {
	ch chan Status
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{ch: make(chan Status, 64)}
}

func (r *statusRecorder) record(status Status, _ error) {
	r.ch <- status
}

func (r *statusRecorder) waitFor(t *testing.T, want Status) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.ch:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for status %s", want)
		}
	}
}

func fastPolicy(retries int) resilience.ReconnectPolicy {
	return resilience.ReconnectPolicy{BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, MaxRetries: retries}
}

func frame(t *testing.T, event, typ string, payload any) wire.Message {
	t.Helper()
	raw, err := sonic.Marshal(payload)
	require.NoError(t, err)
	return wire.Message{Event: event, Type: typ, Payload: raw}
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func testLogger() *logging.Logger {
	return logging.NewNop()
}
