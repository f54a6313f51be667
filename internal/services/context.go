package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	jobKindKey contextKey = "job_kind"
	sourceKey  contextKey = "source"
)

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithJob annotates context with the kind and source path of the job being
// processed.
func WithJob(ctx context.Context, kind, source string) context.Context {
	if kind != "" {
		ctx = context.WithValue(ctx, jobKindKey, kind)
	}
	if source != "" {
		ctx = context.WithValue(ctx, sourceKey, source)
	}
	return ctx
}

// JobKindFromContext returns the job kind if present.
func JobKindFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(jobKindKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// SourceFromContext returns the job source path if present.
func SourceFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(sourceKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
