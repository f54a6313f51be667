package runlock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquireIsExclusivePerOutput(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(dir, "/data/esde_media")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := Acquire(dir, "/data/esde_media/"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for the same output, got %v", err)
	}

	other, err := Acquire(dir, "/data/other")
	if err != nil {
		t.Fatalf("different output roots should not contend: %v", err)
	}
	_ = other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := Acquire(dir, "/data/esde_media")
	if err != nil {
		t.Fatalf("lock should be free after release: %v", err)
	}
	_ = again.Release()
}

func TestPathIsStable(t *testing.T) {
	a := Path("/logs", "/data/out")
	b := Path("/logs", "/data/./out")
	if a != b {
		t.Fatalf("paths differ: %s vs %s", a, b)
	}
	if filepath.Dir(a) != "/logs" {
		t.Fatalf("unexpected dir %s", a)
	}
}
