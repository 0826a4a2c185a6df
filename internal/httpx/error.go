// Package httpx maps storefront failures onto HTTP responses.
package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"macollections.com/storefront/internal/commerce"
)

// StatusClientClosed is logged when the visitor went away before the render finished.
const StatusClientClosed = 499

// ErrBadRequest marks malformed visitor input (form values, query parameters).
var ErrBadRequest = errors.New("bad request")

// Error is the canonical description of a failed request, rendered by the
// error page template.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	// Empty means the page renders its layout with no content and status 200.
	Empty bool
}

// NewError constructs a new Error with the provided parameters.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WithRequestID sets the request identifier on the error payload.
func (e Error) WithRequestID(id string) Error {
	e.RequestID = sanitize(id, 80)
	return e
}

// Classify maps an error returned while building a page:
// an unresolvable region renders nothing, a missing entity is a 404, a
// cancelled request is 499, and any other fetch failure is a 502.
func Classify(ctx context.Context, err error) Error {
	var out Error
	switch {
	case err == nil:
		out = Error{Status: http.StatusOK}
	case errors.Is(err, commerce.ErrRegionNotFound):
		out = Error{Code: "region_unresolved", Status: http.StatusOK, Empty: true}
	case errors.Is(err, commerce.ErrNotFound):
		out = NewError("not_found", "The page you are looking for does not exist.", http.StatusNotFound)
	case errors.Is(err, ErrBadRequest):
		out = NewError("bad_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		out = NewError("client_closed", "request cancelled", StatusClientClosed)
	default:
		out = NewError("upstream_unavailable", "Something went wrong while loading this page.", http.StatusBadGateway)
	}
	if ctx != nil {
		out = out.WithRequestID(middleware.GetReqID(ctx))
	}
	return out
}

// StatusFor returns the HTTP status Classify would assign to err.
func StatusFor(err error) int {
	return Classify(nil, err).Status
}

// Internal is the error used when a handler panics or a template fails.
func Internal(ctx context.Context) Error {
	e := NewError("internal_server_error", "Something went wrong.", http.StatusInternalServerError)
	if ctx != nil {
		e = e.WithRequestID(middleware.GetReqID(ctx))
	}
	return e
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
