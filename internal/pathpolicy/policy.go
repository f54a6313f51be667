// Package pathpolicy decides whether a (source, dest) pair needs work.
//
// Evaluate is a pure predicate over filesystem state at call time. Checks run
// in a fixed order: hidden AppleDouble artifacts first, then an existing
// non-empty destination (idempotent rerun), then an unusable source.
package pathpolicy

import (
	"os"
	"path/filepath"
	"strings"
)

// HiddenPrefix marks macOS AppleDouble metadata files that are never copied.
const HiddenPrefix = "._"

// Reason explains a skip decision.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonHidden        Reason = "hidden"
	ReasonDestExists    Reason = "dest_exists"
	ReasonSourceMissing Reason = "source_missing"
	ReasonSourceEmpty   Reason = "source_empty"
)

// Decision is the result of Evaluate. Success is only meaningful when Skip is
// set: a skip because the destination already exists counts as a successful
// job, every other skip does not.
type Decision struct {
	Skip    bool
	Success bool
	Reason  Reason
}

// Proceed reports whether the caller should run its converter.
func (d Decision) Proceed() bool {
	return !d.Skip
}

// IsHidden reports whether name (a path or a basename) is an AppleDouble file.
func IsHidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), HiddenPrefix)
}

// Evaluate applies the skip rules to a source and its destination.
func Evaluate(source, dest string) Decision {
	if IsHidden(source) {
		return Decision{Skip: true, Reason: ReasonHidden}
	}
	if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		return Decision{Skip: true, Success: true, Reason: ReasonDestExists}
	}
	info, err := os.Stat(source)
	if err != nil || !info.Mode().IsRegular() {
		return Decision{Skip: true, Reason: ReasonSourceMissing}
	}
	if info.Size() == 0 {
		return Decision{Skip: true, Reason: ReasonSourceEmpty}
	}
	return Decision{}
}
