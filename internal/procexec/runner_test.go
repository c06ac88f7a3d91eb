package procexec

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExecRunnerCapturesStreams(t *testing.T) {
	stub := writeScript(t, `echo out; echo "err $1" >&2; exit 0`)

	out, err := ExecRunner{}.Run(context.Background(), stub, "-buildconf")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(out.Stdout) != "out" {
		t.Fatalf("unexpected stdout: %q", out.Stdout)
	}
	if strings.TrimSpace(out.Stderr) != "err -buildconf" {
		t.Fatalf("unexpected stderr: %q", out.Stderr)
	}
	if out.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %d", out.ExitCode)
	}
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	stub := writeScript(t, `echo "configuration: --enable-gpl" >&2; exit 1`)

	out, err := ExecRunner{}.Run(context.Background(), stub)
	if err != nil {
		t.Fatalf("expected nil error for non-zero exit, got %v", err)
	}
	if out.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", out.ExitCode)
	}
	if !strings.Contains(out.Stderr, "--enable-gpl") {
		t.Fatalf("expected stderr to be captured, got %q", out.Stderr)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestExecRunnerHonoursContext(t *testing.T) {
	stub := writeScript(t, `exec sleep 5`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := (ExecRunner{}).Run(ctx, stub); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunnerFunc(t *testing.T) {
	calls := 0
	r := RunnerFunc(func(ctx context.Context, name string, args ...string) (Output, error) {
		calls++
		return Output{Stderr: name + " " + strings.Join(args, " ")}, nil
	})
	out, err := r.Run(context.Background(), "ffmpeg", "-version")
	if err != nil || out.Stderr != "ffmpeg -version" || calls != 1 {
		t.Fatalf("unexpected result: %+v %v calls=%d", out, err, calls)
	}
}
