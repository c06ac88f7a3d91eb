package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"encoderkit/internal/testsupport"
)

const stubBuildconf = `ffmpeg version 4.4.1 Copyright (c) 2000-2021 the FFmpeg developers
  configuration: --enable-gpl --enable-libx265`

type cliTestEnv struct {
	baseDir    string
	configPath string
	cacheDir   string
	binDir     string
}

// setupCLITestEnv writes a config rooted in a temp dir and puts only binDir
// on PATH. extra is appended to the config verbatim.
func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		cacheDir:   filepath.Join(base, "cache"),
		binDir:     filepath.Join(base, "bin"),
	}
	if err := os.MkdirAll(env.binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	t.Setenv("PATH", env.binDir)
	t.Setenv("ENCODERKIT_FFMPEG", "")
	t.Setenv("HOME", filepath.Join(base, "home"))

	content := fmt.Sprintf(`[encoder]
cache_dir = %q
probe_timeout_seconds = 5
download_timeout_seconds = 30

[paths]
state_dir = %q
log_dir = %q

[logging]
level = "error"
%s`, env.cacheDir, filepath.Join(base, "state"), filepath.Join(base, "logs"), extra)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) stubEncoder(t *testing.T, stderr string) {
	t.Helper()
	testsupport.WriteStubEncoder(t, filepath.Join(e.binDir, "ffmpeg"), stderr)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
