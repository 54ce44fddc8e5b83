// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers report failures in one call: the log line gets the real error,
// the user gets a friendly message and somewhere to go back to.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

func (e *ErrorLogger) logRequest(level string, r *http.Request, msg string, err error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if level == "warn" {
		e.log.Warn(msg, fields...)
		return
	}
	e.log.Error(msg, fields...)
}

// LogBadRequest logs a client error and renders the error page with the
// user-facing message.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logRequest("warn", r, logMsg, err)
	w.WriteHeader(http.StatusBadRequest)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogServerError logs a server error and renders the error page with the
// user-facing message.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logRequest("error", r, logMsg, err)
	w.WriteHeader(http.StatusInternalServerError)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogNotFound logs a lookup miss and renders the 404 page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logRequest("warn", r, logMsg, err)
	RenderNotFound(w, r, userMsg, backURL)
}

// HTMXLogServerError logs a server error and tells an HTMX client to
// navigate to the back URL instead of swapping in an error fragment.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logRequest("error", r, logMsg, err)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", backURL)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	RenderForbidden(w, r, userMsg, backURL)
}
