package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/pkg/wire"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const maxResponseBytes = 4 << 20

// NightRef addresses one night of one league.
type NightRef struct {
	LeagueID string
	NightID  string
}

func (r NightRef) path(suffix string) string {
	return "/leagues/" + url.PathEscape(r.LeagueID) + "/nights/" + url.PathEscape(r.NightID) + suffix
}

type FacadeConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Facade calls the league night HTTP API. Mutations are sent once and never
// retried; concurrent snapshot reads of the same night share one request.
type Facade struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	flight     singleflight.Group
}

func NewFacade(cfg FacadeConfig) *Facade {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	return &Facade{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:     logger,
	}
}

func (f *Facade) CreateNight(ctx context.Context, leagueID string, req wire.CreateNightRequest) (wire.Night, error) {
	return call[wire.Night](ctx, f, http.MethodPost, "/leagues/"+url.PathEscape(leagueID)+"/nights", req)
}

func (f *Facade) Snapshot(ctx context.Context, ref NightRef) (wire.Snapshot, error) {
	path := ref.path("")
	out, err, _ := f.flight.Do(path, func() (any, error) {
		return call[wire.Snapshot](ctx, f, http.MethodGet, path, nil)
	})
	if err != nil {
		return wire.Snapshot{}, err
	}
	snapshot, ok := out.(wire.Snapshot)
	if !ok {
		return wire.Snapshot{}, fmt.Errorf("unexpected snapshot type %T", out)
	}
	return snapshot, nil
}

func (f *Facade) StartNight(ctx context.Context, ref NightRef, userID string) (wire.Night, error) {
	return call[wire.Night](ctx, f, http.MethodPost, ref.path("/start"), wire.UserRequest{UserID: userID})
}

func (f *Facade) EndNight(ctx context.Context, ref NightRef, userID string) (wire.Night, error) {
	return call[wire.Night](ctx, f, http.MethodPost, ref.path("/end"), wire.UserRequest{UserID: userID})
}

func (f *Facade) CheckIn(ctx context.Context, ref NightRef, userID string) (wire.CheckInResult, error) {
	return call[wire.CheckInResult](ctx, f, http.MethodPost, ref.path("/checkin"), wire.UserRequest{UserID: userID})
}

func (f *Facade) UncheckIn(ctx context.Context, ref NightRef, userID string) (wire.Summary, error) {
	return call[wire.Summary](ctx, f, http.MethodDelete, ref.path("/checkin"), wire.UserRequest{UserID: userID})
}

func (f *Facade) SendRequest(ctx context.Context, ref NightRef, requesterID, requestedID string) (wire.PartnershipRequest, error) {
	body := wire.PartnershipRequestBody{RequesterID: requesterID, RequestedID: requestedID}
	return call[wire.PartnershipRequest](ctx, f, http.MethodPost, ref.path("/partnership-request"), body)
}

func (f *Facade) AcceptRequest(ctx context.Context, ref NightRef, requestID, userID string) (wire.Acceptance, error) {
	body := wire.RespondRequest{RequestID: requestID, UserID: userID}
	return call[wire.Acceptance](ctx, f, http.MethodPost, ref.path("/partnership-accept"), body)
}

func (f *Facade) RejectRequest(ctx context.Context, ref NightRef, requestID, userID string) (wire.PartnershipRequest, error) {
	body := wire.RespondRequest{RequestID: requestID, UserID: userID}
	return call[wire.PartnershipRequest](ctx, f, http.MethodPost, ref.path("/partnership-reject"), body)
}

func (f *Facade) RemovePartnership(ctx context.Context, ref NightRef, userID string) (wire.Partnership, error) {
	return call[wire.Partnership](ctx, f, http.MethodDelete, ref.path("/partnership"), wire.UserRequest{UserID: userID})
}

func (f *Facade) CreateMatches(ctx context.Context, ref NightRef, userID string) ([]wire.Match, error) {
	return call[[]wire.Match](ctx, f, http.MethodPost, ref.path("/matches"), wire.UserRequest{UserID: userID})
}

func (f *Facade) CancelMatch(ctx context.Context, ref NightRef, matchID, userID string) (wire.Match, error) {
	return call[wire.Match](ctx, f, http.MethodPost, ref.path("/matches/"+url.PathEscape(matchID)+"/cancel"), wire.UserRequest{UserID: userID})
}

func (f *Facade) SubmitScore(ctx context.Context, ref NightRef, matchID, userID string, team1, team2 int) (wire.Match, error) {
	body := wire.SubmitScoreRequest{MatchID: matchID, UserID: userID, Team1Score: &team1, Team2Score: &team2}
	return call[wire.Match](ctx, f, http.MethodPost, ref.path("/submit-score"), body)
}

func (f *Facade) ConfirmScore(ctx context.Context, ref NightRef, matchID, userID string) (wire.Match, error) {
	return f.scoreAction(ctx, ref, "/confirm-score", matchID, userID)
}

func (f *Facade) DisputeScore(ctx context.Context, ref NightRef, matchID, userID string) (wire.Match, error) {
	return f.scoreAction(ctx, ref, "/dispute-score", matchID, userID)
}

func (f *Facade) CancelScore(ctx context.Context, ref NightRef, matchID, userID string) (wire.Match, error) {
	return f.scoreAction(ctx, ref, "/cancel-score", matchID, userID)
}

func (f *Facade) OverrideScore(ctx context.Context, ref NightRef, matchID, userID string, team1, team2 int) (wire.Match, error) {
	body := wire.OverrideScoreRequest{UserID: userID, Team1Score: &team1, Team2Score: &team2}
	return call[wire.Match](ctx, f, http.MethodPost, ref.path("/matches/"+url.PathEscape(matchID)+"/override-score"), body)
}

func (f *Facade) scoreAction(ctx context.Context, ref NightRef, suffix, matchID, userID string) (wire.Match, error) {
	body := wire.ScoreActionRequest{MatchID: matchID, UserID: userID}
	return call[wire.Match](ctx, f, http.MethodPost, ref.path(suffix), body)
}

func call[T any](ctx context.Context, f *Facade, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("send %s %s: %w", method, path, err)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return zero, fmt.Errorf("read response body: %w", err)
	}

	var envelope wire.Response[T]
	decodeErr := sonic.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		msg := envelope.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		f.logger.DebugContext(ctx, "league night api request failed", "method", method, "path", path, "status", resp.StatusCode, "error", msg)
		return zero, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return zero, fmt.Errorf("decode response: %w", decodeErr)
	}
	return envelope.Data, nil
}
