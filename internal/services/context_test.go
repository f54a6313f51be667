package services_test

import (
	"context"
	"testing"

	"esdemedia/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithJob(ctx, "video", "/roms/snes/media/videos/mario.mp4")

	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
	if kind, ok := services.JobKindFromContext(ctx); !ok || kind != "video" {
		t.Fatalf("unexpected job kind: %v %v", kind, ok)
	}
	if src, ok := services.SourceFromContext(ctx); !ok || src != "/roms/snes/media/videos/mario.mp4" {
		t.Fatalf("unexpected source: %v %v", src, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithJob(ctx, "", "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.JobKindFromContext(ctx); ok {
		t.Fatal("expected no job kind value")
	}
}
