package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	return c.Normalize()
}

// Normalize re-applies path expansion and defaulting after callers mutate the
// config, for example when CLI flags override the input or output directory.
// Environment fallbacks are only consulted by Load.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("ESDEMEDIA_INPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.InputDir = value
	}
	if value, ok := os.LookupEnv("ESDEMEDIA_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = value
	}
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	exts := make([]string, 0, len(c.Video.SourceExtensions))
	seen := make(map[string]struct{}, len(c.Video.SourceExtensions))
	for _, ext := range c.Video.SourceExtensions {
		ext = normalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = defaultSourceExtensions()
	}
	c.Video.SourceExtensions = exts

	c.Video.TargetExtension = normalizeExtension(c.Video.TargetExtension)
	if c.Video.TargetExtension == "" {
		c.Video.TargetExtension = defaultVideoTarget
	}
	c.Video.Codec = strings.TrimSpace(c.Video.Codec)
	c.Video.Preset = strings.TrimSpace(c.Video.Preset)
	c.Video.X265Params = strings.TrimSpace(c.Video.X265Params)
	c.Video.PixelFormat = strings.TrimSpace(c.Video.PixelFormat)
	c.Video.CopyAudioCodec = strings.ToLower(strings.TrimSpace(c.Video.CopyAudioCodec))
	c.Video.AudioCodec = strings.TrimSpace(c.Video.AudioCodec)
	if c.Video.AudioCodec == "" {
		c.Video.AudioCodec = defaultAudioCodec
	}
	c.Video.AudioBitrate = strings.TrimSpace(c.Video.AudioBitrate)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
