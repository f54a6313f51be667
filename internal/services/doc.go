// Package services defines shared utilities consumed by the converters and the
// tree walker.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and the current job (kind and
//     source path) for logging.
//   - Structured error markers plus the Wrap helper so converters can tell a
//     missing tool from a failing one and decide whether to fall through to
//     the next attempt.
//
// Use these helpers when wiring a new converter so error classification and
// log correlation stay uniform across the pipeline.
package services
