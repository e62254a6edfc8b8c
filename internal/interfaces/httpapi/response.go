package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-night/internal/usecase"
	"github.com/riskibarqy/league-night/pkg/wire"
)

const internalErrorMessage = "internal server error"

// conflictReasons are reported after the generic conflict message.
var conflictReasons = []error{
	usecase.ErrAlreadyCheckedIn,
	usecase.ErrPartnershipActive,
	usecase.ErrNotCheckedIn,
	usecase.ErrAlreadyPartnered,
	usecase.ErrDuplicateRequest,
	usecase.ErrNotPending,
	usecase.ErrAlreadyPending,
	usecase.ErrScoreNotPending,
	usecase.ErrNightNotActive,
	usecase.ErrNightClosed,
	usecase.ErrMatchInProgress,
	usecase.ErrMatchClosed,
	usecase.ErrStaleWrite,
}

type mappedError struct {
	HTTPStatus int
	Message    string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, wire.Response[any]{Success: true, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	if mapped.HTTPStatus >= http.StatusInternalServerError {
		markSpanFailed(ctx, err)
	}
	writeJSON(w, mapped.HTTPStatus, wire.Response[any]{Error: mapped.Message})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, wire.Response[any]{Error: internalErrorMessage})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Message: usecase.ErrNotFound.Error()}
	case errors.Is(err, usecase.ErrForbidden):
		return mappedError{HTTPStatus: http.StatusForbidden, Message: usecase.ErrForbidden.Error()}
	case errors.Is(err, usecase.ErrConflict):
		msg := usecase.ErrConflict.Error()
		for _, reason := range conflictReasons {
			if errors.Is(err, reason) {
				msg += ": " + reason.Error()
				break
			}
		}
		return mappedError{HTTPStatus: http.StatusConflict, Message: msg}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Message: usecase.ErrDependencyUnavailable.Error()}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Message: internalErrorMessage}
	}
}

// fail logs a failed request and writes its error envelope. Client errors
// log at warn, everything unexpected at error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	writeError(ctx, w, err)
}
