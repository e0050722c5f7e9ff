// Package telemetry provides the engine's structured logging, a thin
// wrapper over log/slog rather than a bespoke logging framework — the
// example pack's own services (signadot-tony-format's system/logd,
// docd) reach for slog's JSON handler rather than rolling their own,
// and this module follows the same convention.
package telemetry

import (
	"io"
	"log/slog"
)

// NewLogger returns a JSON-handler slog.Logger writing to w, tagged
// with the engine's component name (component=formcoverage).
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("component", "formcoverage")
}

// NewDiscardLogger returns a logger that drops every record, for tests
// and library callers that have not wired their own sink.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
