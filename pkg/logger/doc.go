// Package logger builds configured log/slog loggers with sensible defaults
// for development (text, debug) and production (JSON, info).
package logger
