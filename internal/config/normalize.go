package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEncoder(); err != nil {
		return err
	}
	c.normalizeS3()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoder() error {
	c.Encoder.BinaryName = strings.TrimSpace(c.Encoder.BinaryName)
	if c.Encoder.BinaryName == "" {
		c.Encoder.BinaryName = defaultBinaryName
	}

	c.Encoder.Executable = strings.TrimSpace(c.Encoder.Executable)
	if c.Encoder.Executable == "" {
		if value, ok := os.LookupEnv("ENCODERKIT_FFMPEG"); ok {
			c.Encoder.Executable = strings.TrimSpace(value)
		}
	}
	if strings.HasPrefix(c.Encoder.Executable, "~") {
		expanded, err := expandPath(c.Encoder.Executable)
		if err != nil {
			return fmt.Errorf("encoder.executable: %w", err)
		}
		c.Encoder.Executable = expanded
	}

	if strings.TrimSpace(c.Encoder.CacheDir) == "" {
		c.Encoder.CacheDir = defaultCacheDir
	}
	var err error
	if c.Encoder.CacheDir, err = expandPath(strings.TrimSpace(c.Encoder.CacheDir)); err != nil {
		return fmt.Errorf("encoder.cache_dir: %w", err)
	}

	if c.Encoder.Sources == nil {
		c.Encoder.Sources = map[string]string{}
	}
	for key, value := range c.Encoder.Sources {
		c.Encoder.Sources[key] = strings.TrimSpace(value)
	}
	if c.Encoder.Checksums == nil {
		c.Encoder.Checksums = map[string]string{}
	}
	for key, value := range c.Encoder.Checksums {
		c.Encoder.Checksums[key] = strings.ToLower(strings.TrimSpace(value))
	}
	return nil
}

func (c *Config) normalizeS3() {
	c.S3.Endpoint = strings.TrimSpace(c.S3.Endpoint)
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	if c.S3.Region == "" {
		c.S3.Region = defaultS3Region
	}
	c.S3.AccessKey = strings.TrimSpace(c.S3.AccessKey)
	if c.S3.AccessKey == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.S3.AccessKey = strings.TrimSpace(value)
		}
	}
	c.S3.SecretKey = strings.TrimSpace(c.S3.SecretKey)
	if c.S3.SecretKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.S3.SecretKey = strings.TrimSpace(value)
		}
	}
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
