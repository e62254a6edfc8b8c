package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/league-night/internal/config"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

const (
	betterStackQueueSize  = 1024
	betterStackBatchSize  = 64
	betterStackFlushEvery = time.Second
	betterStackMaxTries   = 3
	betterStackDrainLimit = 5 * time.Second
)

// InitBetterStackLogger returns a logger that writes to base and also ships
// records at or above BETTERSTACK_MIN_LEVEL to Better Stack. The returned
// func flushes pending batches and must run before exit.
func InitBetterStackLogger(cfg config.Config, base *logging.Logger) (*logging.Logger, ShutdownFunc, error) {
	if base == nil {
		base = logging.New(cfg.Development(), cfg.LogLevel)
	}
	if !cfg.BetterStackEnabled {
		base.Info("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return base, noopShutdown, nil
	}

	endpoint := normalizeBetterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, errors.New("betterstack endpoint cannot be empty")
	}

	shipper := newBetterStackShipper(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)
	shipped := zapcore.NewCore(
		zapcore.NewJSONEncoder(betterStackEncoderConfig()),
		zapcore.AddSync(shipper),
		cfg.BetterStackMinLevel,
	).With([]zapcore.Field{
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.AppEnv),
	})

	logger := logging.FromZap(base.Zap().WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, shipped)
	})))
	logger.Info("betterstack enabled", "endpoint", endpoint, "min_level", cfg.BetterStackMinLevel.String())

	shutdown := func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, betterStackDrainLimit)
			defer cancel()
		}
		if err := shipper.Close(ctx); err != nil {
			return fmt.Errorf("drain betterstack batches: %w", err)
		}
		if err := logger.Sync(); err != nil && !isUnsyncableOutput(err) {
			return err
		}
		return nil
	}
	return logger, shutdown, nil
}

func betterStackEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "dt"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func normalizeBetterStackEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	switch {
	case endpoint == "":
		return ""
	case strings.Contains(endpoint, "://"):
		return endpoint
	default:
		return "https://" + endpoint
	}
}

// betterStackShipper is a zapcore.WriteSyncer that queues encoded records and
// posts them as JSON arrays from a single goroutine. A full queue drops
// records instead of blocking the caller.
type betterStackShipper struct {
	endpoint string
	token    string
	client   *http.Client

	mu      sync.RWMutex
	closed  bool
	records chan []byte
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

func newBetterStackShipper(endpoint, token string, timeout time.Duration) *betterStackShipper {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &betterStackShipper{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		records:  make(chan []byte, betterStackQueueSize),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *betterStackShipper) Write(p []byte) (int, error) {
	record := bytes.TrimSpace(p)
	if len(record) == 0 {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return len(p), nil
	}
	select {
	case s.records <- bytes.Clone(record):
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full, dropped=%d\n", n)
		}
	}
	return len(p), nil
}

func (s *betterStackShipper) Sync() error { return nil }

// Close stops intake and waits for the queued batches to be posted.
func (s *betterStackShipper) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.records)
		s.mu.Unlock()
	})
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *betterStackShipper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(betterStackFlushEvery)
	defer ticker.Stop()

	batch := make([][]byte, 0, betterStackBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.post(batch); err != nil {
			fmt.Fprintf(os.Stderr, "betterstack ship %d records: %v\n", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case record, ok := <-s.records:
			if !ok {
				flush()
				return
			}
			batch = append(batch, record)
			if len(batch) >= betterStackBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *betterStackShipper) post(batch [][]byte) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	for i, record := range batch {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.Write(record)
	}
	_ = buf.WriteByte(']')

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 200 * time.Millisecond

	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		return struct{}{}, s.send(buf.B)
	}, backoff.WithBackOff(retry), backoff.WithMaxTries(betterStackMaxTries))
	return err
}

// send posts one payload. Client errors other than 429 are not retried.
func (s *betterStackShipper) send(payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("betterstack status %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("betterstack status %d", resp.StatusCode))
	}
}

// isUnsyncableOutput reports the errors fsync returns for terminals and pipes.
func isUnsyncableOutput(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENOTTY)
}
