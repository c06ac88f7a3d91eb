package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.BinaryName == "" {
		return errors.New("encoder.binary_name must be set")
	}
	if strings.ContainsAny(c.Encoder.BinaryName, `/\`) {
		return errors.New("encoder.binary_name must be a bare command name; use encoder.executable for paths")
	}
	if c.Encoder.ProbeTimeoutSeconds <= 0 {
		return errors.New("encoder.probe_timeout_seconds must be positive")
	}
	if c.Encoder.DownloadTimeoutSeconds <= 0 {
		return errors.New("encoder.download_timeout_seconds must be positive")
	}
	if c.Encoder.RetryCooldownSeconds < 0 {
		return errors.New("encoder.retry_cooldown_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateSources() error {
	for key, raw := range c.Encoder.Sources {
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("encoder.sources.%s: %w", key, err)
		}
		switch parsed.Scheme {
		case "http", "https":
		case "s3":
			if parsed.Host == "" || strings.Trim(parsed.Path, "/") == "" {
				return fmt.Errorf("encoder.sources.%s: s3 sources must look like s3://bucket/key", key)
			}
		default:
			return fmt.Errorf("encoder.sources.%s: unsupported scheme %q", key, parsed.Scheme)
		}
	}
	for key, sum := range c.Encoder.Checksums {
		if sum == "" {
			continue
		}
		decoded, err := hex.DecodeString(sum)
		if err != nil || len(decoded) != 32 {
			return fmt.Errorf("encoder.checksums.%s must be a hex-encoded sha256 digest", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
