package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-night/internal/usecase"
)

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["success"].(bool); !got {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, ok := body["success"].(bool); !ok || got {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	if got, _ := body["error"].(string); got != "invalid input: bad payload" {
		t.Fatalf("unexpected error message %q", got)
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("did not expect data key in error response")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid input keeps detail",
			err:        fmt.Errorf("%w: scores cannot tie", usecase.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid input: scores cannot tie",
		},
		{
			name:       "not found hides ids",
			err:        fmt.Errorf("%w: match=M1", usecase.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "resource not found",
		},
		{
			name:       "forbidden has no detail",
			err:        errors.Wrap(usecase.ErrNotParticipant, "confirm score"),
			wantStatus: http.StatusForbidden,
			wantMsg:    "you can't do that",
		},
		{
			name:       "conflict names the reason",
			err:        errors.Wrap(usecase.ErrAlreadyPartnered, "accept request"),
			wantStatus: http.StatusConflict,
			wantMsg:    "someone else already did this: player is already partnered",
		},
		{
			name:       "bare conflict",
			err:        usecase.ErrConflict,
			wantStatus: http.StatusConflict,
			wantMsg:    "someone else already did this",
		},
		{
			name:       "unexpected error",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if got.HTTPStatus != tt.wantStatus {
				t.Fatalf("status=%d want=%d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Message != tt.wantMsg {
				t.Fatalf("message=%q want=%q", got.Message, tt.wantMsg)
			}
		})
	}
}
