package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"esdemedia/internal/config"
	"esdemedia/internal/deps"
)

// CheckInputDir verifies that the ROM tree exists and can be listed and read.
func CheckInputDir(path string) Result {
	return checkDirectory("Input directory", path, unix.R_OK|unix.X_OK, "read ok")
}

// CheckOutputDir verifies the output root is writable. A missing output root
// passes when its closest existing ancestor is writable, since the run
// creates it.
func CheckOutputDir(path string) Result {
	const name = "Output directory"
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for parent != filepath.Dir(parent) {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		parent = filepath.Dir(parent)
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if path == "" {
		return Result{Name: name, Detail: "(error: not configured)"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckSystemDeps evaluates every external tool the converters can use.
// Only ffmpeg and ffprobe are required for video optimization; the image and
// PDF tools are optional because each has a library fallback.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for video transcoding and remuxing",
			Optional:    cfg.Pipeline.SkipVideoOptimization,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for video inspection",
			Optional:    cfg.Pipeline.SkipVideoOptimization,
		},
		{
			Name:         "ImageMagick",
			Command:      "magick",
			Alternatives: []string{"convert"},
			Description:  "Preferred WebP encoder",
			Optional:     true,
		},
		{
			Name:        "cwebp",
			Command:     "cwebp",
			Description: "WebP encoder used when ImageMagick is missing",
			Optional:    true,
		},
		{
			Name:        "OCRmyPDF",
			Command:     "ocrmypdf",
			Description: "Preferred PDF optimizer",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
