// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to StatusFor for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/telemetry"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
)

// Writer turns errors returned by application services into JSON responses.
// Server errors are logged and reported to Sentry. In production their text
// is replaced by the status text.
type Writer struct {
	log          logger.Logger
	isProduction bool
}

// New returns a Writer. isProduction hides 5xx error details from clients.
func New(log logger.Logger, isProduction bool) *Writer {
	return &Writer{log: log, isProduction: isProduction}
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func (ew *Writer) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		ew.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		telemetry.CaptureError(r.Context(), err)
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status, ew.isProduction))
}

// StatusFor returns the HTTP status code that represents err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, catalogdomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, catalogdomain.ErrInvalidItem):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, catalogdomain.ErrInvalidPageRequest):
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
