package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validatePDF(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.InputDir == c.Paths.OutputDir {
		return fmt.Errorf("paths.output_dir must differ from paths.input_dir (%s)", c.Paths.InputDir)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Codec == "" {
		return errors.New("video.codec must be set")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	for _, ext := range c.Video.SourceExtensions {
		if ext == c.Video.TargetExtension {
			return fmt.Errorf("video.source_extensions must not include the target extension %q", ext)
		}
	}
	if err := ensureNonNegative(map[string]int{
		"video.timeout_minutes": c.Video.TimeoutMinutes,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImage() error {
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return errors.New("image.quality must be between 1 and 100")
	}
	return ensureNonNegative(map[string]int{
		"image.timeout_seconds": c.Image.TimeoutSeconds,
	})
}

func (c *Config) validatePDF() error {
	if c.PDF.OptimizeLevel < 0 || c.PDF.OptimizeLevel > 3 {
		return errors.New("pdf.optimize_level must be between 0 and 3")
	}
	if c.PDF.JPEGQuality < 1 || c.PDF.JPEGQuality > 100 {
		return errors.New("pdf.jpeg_quality must be between 1 and 100")
	}
	return ensureNonNegative(map[string]int{
		"pdf.timeout_seconds": c.PDF.TimeoutSeconds,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return ensureNonNegative(map[string]int{
		"logging.retention_days": c.Logging.RetentionDays,
	})
}

func ensureNonNegative(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be zero or positive", key)
		}
	}
	return nil
}
