package log

import (
	"context"
	"log/slog"
	"net/http"
)

// RequestLogger emits the paired start and finish lines for one HTTP
// request. The trace middleware builds one per request with the
// request id already bound.
type RequestLogger struct {
	logger *Logger
}

// NewRequestLogger wraps logger for request logging.
func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// RequestStarted logs the arrival of a request.
func (rl *RequestLogger) RequestStarted(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	rl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// RequestFinished logs the response. 4xx statuses surface as warnings
// and 5xx as errors so failures stand out at default log levels.
func (rl *RequestLogger) RequestFinished(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	rl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}
