package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	// Skip if no context
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	// Extract span from context
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	// Add trace context to log
	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for analysis and tracking operations

func (l *Logger) LogAnalysisStart(ctx context.Context, path string, declarations int) {
	l.WithContext(ctx).Info().
		Str("path", path).
		Int("declarations", declarations).
		Str("operation", "analyze").
		Msg("starting analysis")
}

func (l *Logger) LogAnalysisComplete(ctx context.Context, analyzed int, violations int, durationMs float64) {
	l.WithContext(ctx).Info().
		Int("functions_analyzed", analyzed).
		Int("violations_found", violations).
		Float64("duration_ms", durationMs).
		Str("operation", "analyze").
		Msg("analysis completed")
}

func (l *Logger) LogUnknownContext(ctx context.Context, operation string, contextID string) {
	l.WithContext(ctx).Warn().
		Str("operation", operation).
		Str("context_id", contextID).
		Msg("unknown tracking context, update dropped")
}

func (l *Logger) LogListenerPanic(ctx context.Context, eventType string, recovered interface{}) {
	l.WithContext(ctx).Error().
		Str("event_type", eventType).
		Interface("panic", recovered).
		Msg("tracking event listener panicked")
}

func (l *Logger) LogStorageError(ctx context.Context, operation string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("storage operation failed")
}
