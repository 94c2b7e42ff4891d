// Package observability provides structured logging, metrics, and tracing
// for resource registration and resolution.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EnrichLogger adds resource context to a logger.
//
// Example:
//
//	l := EnrichLogger(logger, "texture", "player")
//	l.Info("decoding") // includes category and tag
func EnrichLogger(logger *slog.Logger, category, tag string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("category", category),
		slog.String("tag", tag),
	)
}

// LogRegistered logs a successful registration.
func LogRegistered(logger *slog.Logger, category, tag string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("resource registered",
		slog.String("category", category),
		slog.String("tag", tag),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRejected logs a registration that failed or was refused.
// Duplicate tags are logged at warn level, everything else at error.
func LogRejected(logger *slog.Logger, category, tag string, err error, duplicate bool) {
	if logger == nil {
		return
	}
	level := slog.LevelError
	msg := "resource registration failed"
	if duplicate {
		level = slog.LevelWarn
		msg = "resource tag already registered"
	}
	logger.Log(context.Background(), level, msg,
		slog.String("category", category),
		slog.String("tag", tag),
		slog.String("error", err.Error()),
	)
}

// LogMissing logs a failed tag resolution at bind/draw time.
func LogMissing(logger *slog.Logger, category, tag, referrer string) {
	if logger == nil {
		return
	}
	logger.Warn("resource not found",
		slog.String("category", category),
		slog.String("tag", tag),
		slog.String("referrer", referrer),
	)
}

// LogFallback logs that a fallback material replaced an unresolvable one.
func LogFallback(logger *slog.Logger, material, fallback string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("using fallback material",
		slog.String("material", material),
		slog.String("fallback", fallback),
		slog.String("error", err.Error()),
	)
}

// LogLoad logs a completed asset file load.
func LogLoad(logger *slog.Logger, category, path string, sizeBytes int, cached bool) {
	if logger == nil {
		return
	}
	logger.Debug("asset loaded",
		slog.String("category", category),
		slog.String("path", path),
		slog.Int("size_bytes", sizeBytes),
		slog.Bool("cached", cached),
	)
}

// LogCacheError logs a decode cache failure (non-fatal).
func LogCacheError(logger *slog.Logger, op, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("asset cache failed",
		slog.String("operation", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// The returned function reports elapsed milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}

// LogClosed logs registry teardown.
func LogClosed(logger *slog.Logger, released, failed int) {
	if logger == nil {
		return
	}
	logger.Info("assets closed",
		slog.Int("released", released),
		slog.Int("failed", failed),
	)
}
