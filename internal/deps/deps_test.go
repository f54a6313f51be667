package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Optional: true},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if !results[1].Optional {
		t.Fatal("expected optional flag to be carried")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank result: %#v", results[2])
	}
}

func TestCheckBinariesUsesAlternatives(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, binDir, "convert")
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "ImageMagick", Command: "magick", Alternatives: []string{"convert"}}})
	if !results[0].Available {
		t.Fatalf("expected alternative to satisfy requirement, got %#v", results[0])
	}
	if results[0].Command != "convert" {
		t.Fatalf("expected resolved command convert, got %q", results[0].Command)
	}
}

func TestResolve(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, binDir, "cwebp")
	t.Setenv("PATH", binDir)

	name, path, ok := Resolve("", "nope", "cwebp")
	if !ok || name != "cwebp" || path != filepath.Join(binDir, "cwebp") {
		t.Fatalf("unexpected resolve result: %q %q %v", name, path, ok)
	}
	if _, _, ok := Resolve("nope"); ok {
		t.Fatal("expected resolve failure")
	}
}
