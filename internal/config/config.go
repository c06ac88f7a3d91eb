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

// Encoder contains settings for locating, downloading, and probing the encoder.
type Encoder struct {
	// BinaryName is the command looked up on PATH, without platform suffix.
	BinaryName string `toml:"binary_name"`
	// Executable is an explicit binary path that takes precedence over PATH.
	Executable string `toml:"executable"`
	// CacheDir is the managed cache directory, relative paths resolve against
	// the working directory.
	CacheDir               string `toml:"cache_dir"`
	Remote                 bool   `toml:"remote"`
	ProbeTimeoutSeconds    int    `toml:"probe_timeout_seconds"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	RetryCooldownSeconds   int    `toml:"retry_cooldown_seconds"`
	// Sources maps "<goos>-<goarch>" or a platform family ("windows", "posix")
	// to a download URL. Architecture keys win over family keys.
	Sources map[string]string `toml:"sources"`
	// Checksums maps the same keys to hex-encoded SHA-256 digests.
	Checksums map[string]string `toml:"checksums"`
}

// S3 contains credentials for s3:// download sources.
type S3 struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// Paths contains state and log directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for encoderkit.
//
// Configuration sections by subsystem:
//   - Encoder: binary lookup, managed cache, download sources and checksums
//   - S3: credentials for s3:// sources
//   - Paths: manifest database and log directories
//   - Logging: log format and level
type Config struct {
	Encoder Encoder `toml:"encoder"`
	S3      S3      `toml:"s3"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
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

	projectPath, err := filepath.Abs("encoderkit.toml")
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

// EnsureDirectories creates the state and log directories. The managed cache
// directory is left to the downloader, which creates it on demand.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ManifestPath returns the location of the install manifest database.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.StateDir, "manifest.db")
}

// ProbeTimeout bounds each encoder invocation made while probing.
func (e Encoder) ProbeTimeout() time.Duration {
	return time.Duration(e.ProbeTimeoutSeconds) * time.Second
}

// DownloadTimeout bounds a single download attempt.
func (e Encoder) DownloadTimeout() time.Duration {
	return time.Duration(e.DownloadTimeoutSeconds) * time.Second
}

// RetryCooldown is the minimum delay between failed download attempts.
func (e Encoder) RetryCooldown() time.Duration {
	return time.Duration(e.RetryCooldownSeconds) * time.Second
}

// SourceFor returns the download URL and source key for the given
// architecture key and platform family. Architecture keys win.
func (e Encoder) SourceFor(archKey, family string) (string, string, bool) {
	for _, key := range []string{archKey, family} {
		if key == "" {
			continue
		}
		if url := strings.TrimSpace(e.Sources[key]); url != "" {
			return url, key, true
		}
	}
	return "", "", false
}

// ChecksumFor returns the configured SHA-256 digest for a source key.
func (e Encoder) ChecksumFor(key string) string {
	return strings.ToLower(strings.TrimSpace(e.Checksums[key]))
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
