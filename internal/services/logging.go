package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

type requestIDKey struct{}

// WithRequestID attaches a request id that LogOperation will include.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

// LogOperation logs the outcome of one service call. The level follows the
// error class: caller mistakes are warnings, missing resources are info and
// everything else is an error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, sessionID string, resourceID string, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsEligibility(err):
			level = slog.LevelWarn
			status = "not_eligible"
		case IsBadRequest(err), IsConflict(err):
			level = slog.LevelWarn
			status = "rejected"
		case IsNotFound(err):
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("session_id", sessionID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs,
			slog.String("error", err.Error()),
			slog.Bool("retryable", IsRetryable(err)))

		var validationErr ValidationErrors
		if errors.As(err, &validationErr) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		}
	}

	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if level == slog.LevelError {
		if pc, file, line, ok := runtime.Caller(1); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				attrs = append(attrs,
					slog.String("caller_func", fn.Name()),
					slog.String("caller_file", file),
					slog.Int("caller_line", line),
				)
			}
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogValidationError logs every field of a rejected exercise.
func (l *ServiceLogger) LogValidationError(ctx context.Context, operation string, exerciseID string, validationErrors ValidationErrors) {
	fieldErrors := make([]slog.Attr, 0, len(validationErrors))
	for _, ve := range validationErrors {
		fieldErrors = append(fieldErrors, slog.String(ve.Field, ve.Message))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed",
		slog.String("operation", operation),
		slog.String("exercise_id", exerciseID),
		slog.Int("error_count", len(validationErrors)),
		slog.Any("field_errors", slog.GroupValue(fieldErrors...)),
	)
}

// Debug logs only when debug logging is enabled for the service.
func (l *ServiceLogger) Debug(ctx context.Context, msg string, args ...any) {
	if l.config.EnableDebug {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

func (l *ServiceLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}
