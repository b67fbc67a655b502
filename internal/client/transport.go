package client

import (
	"log/slog"
	"net/http"
	"time"
)

// maxArgLogLen is the maximum length for logged values before truncation.
const maxArgLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 2 * time.Second

type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// LoggingTransport returns a RoundTripper that logs every request with timing.
// Slow requests (>2s) and failures are logged at WARN level, the rest at DEBUG.
func LoggingTransport(next http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingTransport{next: next, logger: logger}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	attrs := []any{
		"method", req.Method,
		"url", truncate(req.URL.String(), maxArgLogLen),
		"duration_ms", duration.Milliseconds(),
	}
	if id := req.Header.Get("X-Request-ID"); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", truncate(err.Error(), maxArgLogLen))
		t.logger.Warn("request failed", attrs...)
	case duration > slowRequestThreshold:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("slow request", attrs...)
	default:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Debug("request completed", attrs...)
	}

	return resp, err
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
