package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"esdemedia/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckInputDir_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckInputDir(f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckInputDir_Empty(t *testing.T) {
	if result := CheckInputDir(""); result.Passed {
		t.Fatal("expected failure for unset input dir")
	}
}

func TestCheckOutputDir_Creatable(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out")
	result := CheckOutputDir(target)
	if !result.Passed {
		t.Fatalf("expected creatable output to pass, got %s", result.Detail)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("check must not create the directory")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Passed || !results[1].Passed {
		t.Fatalf("expected input and output checks to pass: %+v", results)
	}
	if results[2].Passed {
		t.Fatalf("expected missing log dir to fail: %+v", results[2])
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.IsolatePath(t)
	testsupport.PrependPath(t, testsupport.StubBinaries(t, t.TempDir(), "ffmpeg", "convert"))

	statuses := CheckSystemDeps(cfg)
	byName := map[string]bool{}
	for _, s := range statuses {
		byName[s.Name] = s.Available
	}
	if !byName["FFmpeg"] || !byName["ImageMagick"] {
		t.Fatalf("expected stubbed tools available: %+v", statuses)
	}
	if byName["FFprobe"] || byName["cwebp"] || byName["OCRmyPDF"] {
		t.Fatalf("expected unstubbed tools missing: %+v", statuses)
	}
}
