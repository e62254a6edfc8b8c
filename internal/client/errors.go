package client

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrTransport  = errors.New("realtime transport failed")
	ErrValidation = errors.New("request rejected as invalid")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("someone else already did this")
	ErrForbidden  = errors.New("you can't do that")
	ErrServer     = errors.New("server error")
)

// TransportError is surfaced once reconnection gives up.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("realtime transport failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("realtime transport failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIError is a failure envelope returned by the league night service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("league night api: status=%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return ErrServer
	}
}
