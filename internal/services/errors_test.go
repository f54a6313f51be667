package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"esdemedia/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "video", "transcode", "ffmpeg exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"video", "transcode", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFallthroughClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{services.Wrap(services.ErrToolUnavailable, "image", "cwebp", "not installed", nil), true},
		{services.Wrap(services.ErrExternalTool, "pdf", "ocrmypdf", "exit 2", nil), true},
		{services.Wrap(services.ErrTimeout, "video", "remux", "deadline", nil), true},
		{fmt.Errorf("run: %w", context.Canceled), false},
		{errors.New("unexpected"), false},
	}
	for _, tc := range cases {
		if got := services.Fallthrough(tc.err); got != tc.want {
			t.Fatalf("Fallthrough(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
