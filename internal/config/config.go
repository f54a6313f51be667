package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the input tree, output tree and log locations.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Pipeline toggles whole phases of a run. The CLI flags of the same name
// override these values.
type Pipeline struct {
	SkipGamelists         bool `toml:"skip_gamelists"`
	SkipMedia             bool `toml:"skip_media"`
	SkipVideoOptimization bool `toml:"skip_video_optimization"`
	SkipPDFOptimization   bool `toml:"skip_pdf_optimization"`
}

// Video contains ffmpeg encode settings for gameplay clips.
type Video struct {
	SourceExtensions []string `toml:"source_extensions"`
	TargetExtension  string   `toml:"target_extension"`
	Codec            string   `toml:"codec"`
	Preset           string   `toml:"preset"`
	CRF              int      `toml:"crf"`
	X265Params       string   `toml:"x265_params"`
	PixelFormat      string   `toml:"pixel_format"`
	CopyAudioCodec   string   `toml:"copy_audio_codec"`
	AudioCodec       string   `toml:"audio_codec"`
	AudioBitrate     string   `toml:"audio_bitrate"`
	TimeoutMinutes   int      `toml:"timeout_minutes"`
}

// Image contains WebP conversion settings.
type Image struct {
	Quality        int  `toml:"quality"`
	WebPExtension  bool `toml:"webp_extension"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// PDF contains manual optimization settings.
type PDF struct {
	OptimizeLevel  int  `toml:"optimize_level"`
	JPEGQuality    int  `toml:"jpeg_quality"`
	JBIG2Lossy     bool `toml:"jbig2_lossy"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for esdemedia.
//
// Configuration sections by subsystem:
//   - Paths: ROM tree, output tree and log directory
//   - Pipeline: phase toggles mirrored by CLI flags
//   - Video: ffmpeg transcode and audio policy
//   - Image: WebP quality and naming
//   - PDF: ocrmypdf tuning
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Pipeline Pipeline `toml:"pipeline"`
	Video    Video    `toml:"video"`
	Image    Image    `toml:"image"`
	PDF      PDF      `toml:"pdf"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("esdemedia.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories. The input
// directory is never created; a missing input tree is a pre-flight error.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// VideoTimeout returns the per-invocation ffmpeg deadline, zero when disabled.
func (c *Config) VideoTimeout() time.Duration {
	return time.Duration(c.Video.TimeoutMinutes) * time.Minute
}

// ImageTimeout returns the per-invocation image encoder deadline.
func (c *Config) ImageTimeout() time.Duration {
	return time.Duration(c.Image.TimeoutSeconds) * time.Second
}

// PDFTimeout returns the per-invocation PDF optimizer deadline.
func (c *Config) PDFTimeout() time.Duration {
	return time.Duration(c.PDF.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
