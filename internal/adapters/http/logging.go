package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mladenvic/promoaffiliate/internal/application"
)

// requestLogger carries the request id, the matched route pattern and, once
// auth has run, the caller's subject and role.
func requestLogger(ctx context.Context) *slog.Logger {
	fields := []any{
		"module", "http",
		"layer", "adapter",
		"request_id", requestIDFromContext(ctx),
	}
	if rc := chi.RouteContext(ctx); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			fields = append(fields, "route", pattern)
		}
	}
	if actor := actorFromContext(ctx); actor.SubjectID != "" {
		fields = append(fields, "subject_id", actor.SubjectID, "role", actorRole(actor))
	}
	return slog.Default().With(fields...)
}

func actorRole(actor application.Actor) string {
	switch {
	case actor.Admin:
		return "admin"
	case actor.Affiliate:
		return "affiliate"
	default:
		return "user"
	}
}

// logRequestCompleted writes the access log line. Tracking redirects are the
// hot path, so successful ones drop to debug.
func logRequestCompleted(ctx context.Context, r *http.Request, statusCode int, fields []any) {
	logger := requestLogger(ctx)
	switch {
	case statusCode >= 500:
		logger.ErrorContext(ctx, "http request completed", fields...)
	case statusCode >= 400:
		logger.WarnContext(ctx, "http request completed", fields...)
	case statusCode == http.StatusFound && r.Method == http.MethodGet:
		logger.DebugContext(ctx, "http request completed", fields...)
	default:
		logger.InfoContext(ctx, "http request completed", fields...)
	}
}

func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", statusCode,
		"error_code", code,
		"message", message,
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	logger := requestLogger(ctx)
	switch {
	case statusCode >= 500:
		logger.ErrorContext(ctx, "http operation failed", fields...)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		logger.InfoContext(ctx, "http request denied", fields...)
	default:
		logger.WarnContext(ctx, "http operation failed", fields...)
	}
}
