// Package convert holds the vocabulary shared by every converter: the job and
// outcome types, the ordered fallback chain, per-job temporary workspaces and
// the keep-smaller selection rule.
package convert

import (
	"context"
	"errors"

	"esdemedia/internal/pathpolicy"
)

// Kind selects the converter responsible for a job.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindPlain Kind = "plain"
)

// Job is one discovered file and where its result belongs. Jobs are passed by
// value and never mutated after dispatch.
type Job struct {
	Source string
	Dest   string
	Kind   Kind
}

// Action records what a converter did with a job.
type Action string

const (
	ActionSkipped    Action = "skipped"
	ActionTranscoded Action = "transcoded"
	ActionRemuxed    Action = "remuxed"
	ActionOptimized  Action = "optimized"
	ActionCopied     Action = "copied"
	ActionFailed     Action = "failed"
)

// Outcome is the result of a single job. It feeds logging and the run
// summary and is never persisted.
type Outcome struct {
	Succeeded bool
	BytesIn   int64
	BytesOut  int64
	Action    Action
	Tool      string
	// Reason carries the skip reason for ActionSkipped outcomes.
	Reason pathpolicy.Reason
	// Dest is the path actually written when it differs from Job.Dest.
	Dest string
	Err  error
}

// Converter turns a job into an outcome. Implementations never return a
// successful outcome without a non-empty destination file.
type Converter interface {
	Convert(ctx context.Context, job Job) Outcome
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, job Job) Outcome

func (f ConverterFunc) Convert(ctx context.Context, job Job) Outcome {
	return f(ctx, job)
}

// Skipped builds the outcome for a pathpolicy skip decision.
func Skipped(d pathpolicy.Decision) Outcome {
	return Outcome{Succeeded: d.Success, Action: ActionSkipped, Reason: d.Reason}
}

// Failed builds a failed outcome.
func Failed(err error, bytesIn int64) Outcome {
	if err == nil {
		err = errors.New("conversion failed")
	}
	return Outcome{Action: ActionFailed, BytesIn: bytesIn, Err: err}
}

// Done builds a successful outcome.
func Done(action Action, tool string, bytesIn, bytesOut int64) Outcome {
	return Outcome{Succeeded: true, Action: action, Tool: tool, BytesIn: bytesIn, BytesOut: bytesOut}
}

// Written returns the path the outcome refers to.
func (o Outcome) Written(job Job) string {
	if o.Dest != "" {
		return o.Dest
	}
	return job.Dest
}
