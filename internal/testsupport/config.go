package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"encoderkit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Download sources are cleared so nothing reaches the network by accident.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Encoder.CacheDir = filepath.Join(base, "cache")
	cfgVal.Encoder.Sources = map[string]string{}
	cfgVal.Encoder.Checksums = map[string]string{}
	cfgVal.Encoder.ProbeTimeoutSeconds = 5
	cfgVal.Encoder.DownloadTimeoutSeconds = 30
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSource registers a download URL under key ("windows", "posix", or
// "<goos>-<goarch>").
func WithSource(key, url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.Sources[key] = url
	}
}

// WithChecksum registers the expected SHA-256 digest for a source key.
func WithChecksum(key, digest string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.Checksums[key] = digest
	}
}

// WithRetryCooldown overrides the download retry cooldown in seconds.
func WithRetryCooldown(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.RetryCooldownSeconds = seconds
	}
}

// WithBinaryName overrides the command looked up on PATH.
func WithBinaryName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.BinaryName = name
	}
}

// WithExecutable points the config at an explicit encoder binary.
func WithExecutable(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.Executable = path
	}
}

// WithEmptyPath replaces PATH with an empty directory so no system encoder is
// found.
func WithEmptyPath() ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "empty-path")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir empty path dir: %v", err)
		}
		setPath(b.t, dir)
	}
}

// WithStubbedEncoder writes a stub encoder named after the configured binary
// into a fresh directory and puts only that directory on PATH. The stub prints
// stderr to standard error and exits 0.
func WithStubbedEncoder(stderr string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		WriteStubEncoder(b.t, filepath.Join(binDir, b.cfg.Encoder.BinaryName), stderr)
		setPath(b.t, binDir)
	}
}

// WriteStubEncoder writes an executable shell script at path that prints
// stderr to standard error and exits 0.
func WriteStubEncoder(t testing.TB, path, stderr string) {
	t.Helper()
	WriteScript(t, path, "while IFS= read -r line; do printf '%s\\n' \"$line\"; done >&2 <<'__ENCODER_EOF__'\n"+stderr+"\n__ENCODER_EOF__\nexit 0\n")
}

// WriteScript writes a /bin/sh script with the given body and marks it executable.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	script := []byte("#!/bin/sh\n" + body)
	if err := os.WriteFile(path, script, 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func setPath(t testing.TB, dir string) {
	t.Helper()
	oldPath, had := os.LookupEnv("PATH")
	if err := os.Setenv("PATH", dir); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv("PATH", oldPath)
		} else {
			_ = os.Unsetenv("PATH")
		}
	})
}
