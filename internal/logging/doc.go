// Package logging assembles structured slog loggers and formatting helpers used
// across esdemedia.
//
// It owns the console and JSON handlers, writes each run to its own log file,
// and exposes context-aware helpers so converters automatically tag log lines
// with the run ID and the job being processed. Console output renders a short
// header per line followed by bullet fields, with byte sizes humanized.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
