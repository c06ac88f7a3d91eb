package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"encoderkit/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ENCODERKIT_FFMPEG", "")
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "encoderkit")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Encoder.CacheDir) {
		t.Fatalf("expected absolute cache dir, got %q", cfg.Encoder.CacheDir)
	}
	if filepath.Base(cfg.Encoder.CacheDir) != ".ffmpeg" {
		t.Fatalf("unexpected cache dir: %q", cfg.Encoder.CacheDir)
	}
	if cfg.Encoder.BinaryName != "ffmpeg" {
		t.Fatalf("unexpected binary name: %q", cfg.Encoder.BinaryName)
	}
	if cfg.Encoder.Remote {
		t.Fatal("expected remote disabled by default")
	}
	if cfg.Encoder.ProbeTimeout() <= 0 || cfg.Encoder.DownloadTimeout() <= 0 {
		t.Fatal("expected positive timeouts")
	}
	if cfg.ManifestPath() != filepath.Join(wantState, "manifest.db") {
		t.Fatalf("unexpected manifest path: %q", cfg.ManifestPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "encoderkit.toml")

	type payload struct {
		Encoder struct {
			BinaryName string            `toml:"binary_name"`
			CacheDir   string            `toml:"cache_dir"`
			Remote     bool              `toml:"remote"`
			Sources    map[string]string `toml:"sources"`
			Checksums  map[string]string `toml:"checksums"`
		} `toml:"encoder"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Encoder.BinaryName = "ffmpeg6"
	custom.Encoder.CacheDir = filepath.Join(tempDir, "cache")
	custom.Encoder.Remote = true
	custom.Encoder.Sources = map[string]string{"linux-amd64": "s3://bucket/ffmpeg/linux"}
	custom.Encoder.Checksums = map[string]string{"linux-amd64": strings.Repeat("AB", 32)}
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Encoder.BinaryName != "ffmpeg6" {
		t.Fatalf("unexpected binary name: %q", cfg.Encoder.BinaryName)
	}
	if !cfg.Encoder.Remote {
		t.Fatal("expected remote to be enabled")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
	url, key, ok := cfg.Encoder.SourceFor("linux-amd64", "posix")
	if !ok || key != "linux-amd64" || url != "s3://bucket/ffmpeg/linux" {
		t.Fatalf("unexpected source lookup: %q %q %v", url, key, ok)
	}
	if got := cfg.Encoder.ChecksumFor("linux-amd64"); got != strings.Repeat("ab", 32) {
		t.Fatalf("expected lowercased checksum, got %q", got)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ENCODERKIT_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("AWS_ACCESS_KEY_ID", "access")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Encoder.Executable != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected executable from env, got %q", cfg.Encoder.Executable)
	}
	if cfg.S3.AccessKey != "access" || cfg.S3.SecretKey != "secret" {
		t.Fatalf("expected S3 credentials from env, got %q/%q", cfg.S3.AccessKey, cfg.S3.SecretKey)
	}
}

func TestSourceForFallsBackToFamily(t *testing.T) {
	enc := config.Default().Encoder
	url, key, ok := enc.SourceFor("linux-riscv64", "posix")
	if !ok {
		t.Fatal("expected posix fallback source")
	}
	if key != "posix" || url == "" {
		t.Fatalf("unexpected fallback: %q %q", url, key)
	}
	url, key, ok = enc.SourceFor("darwin-arm64", "posix")
	if !ok || key != "darwin-arm64" || url == "" {
		t.Fatalf("expected architecture key to win, got %q %q", url, key)
	}
	if _, _, ok := enc.SourceFor("plan9-386", "plan9"); ok {
		t.Fatal("expected no source for unknown family")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "binary_name") {
		t.Fatalf("sample config missing encoder section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.StateDir, "encoderkit") {
			t.Fatalf("expected state dir to contain encoderkit, got %q", cfg.Paths.StateDir)
		}
	}
	if cfg.Encoder.Sources["windows"] == "" {
		t.Fatal("expected sample to carry a windows source")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.ProbeTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive probe timeout")
	}

	cfg = config.Default()
	cfg.Encoder.BinaryName = "/usr/bin/ffmpeg"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for binary name with path separators")
	}

	cfg = config.Default()
	cfg.Encoder.Sources["posix"] = "ftp://example.com/ffmpeg"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}

	cfg = config.Default()
	cfg.Encoder.Sources["posix"] = "s3://bucket-only"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for s3 source without key")
	}

	cfg = config.Default()
	cfg.Encoder.Checksums["posix"] = "nothex"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed checksum")
	}

	cfg = config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
