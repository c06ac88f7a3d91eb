package locator

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"encoderkit/internal/logging"
	"encoderkit/internal/platform"
	"encoderkit/internal/procexec"
)

const defaultProbeTimeout = 10 * time.Second

// Options configures a Locator.
type Options struct {
	BinaryName   string
	CacheDir     string
	Platform     platform.Platform
	Runner       procexec.Runner
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

// Locator probes the system path and the managed cache for the encoder.
type Locator struct {
	binaryName   string
	cacheDir     string
	platform     platform.Platform
	runner       procexec.Runner
	probeTimeout time.Duration
	logger       *slog.Logger
	lookPath     func(string) (string, error)
}

// New constructs a Locator. Zero-valued options fall back to "ffmpeg", the
// os/exec runner, and a ten second probe timeout.
func New(opts Options) *Locator {
	name := strings.TrimSpace(opts.BinaryName)
	if name == "" {
		name = "ffmpeg"
	}
	runner := opts.Runner
	if runner == nil {
		runner = procexec.ExecRunner{}
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Locator{
		binaryName:   name,
		cacheDir:     opts.CacheDir,
		platform:     opts.Platform,
		runner:       runner,
		probeTimeout: timeout,
		logger:       logging.NewComponentLogger(opts.Logger, "locator"),
		lookPath:     exec.LookPath,
	}
}

// BinaryName returns the bare command name probed on the system path.
func (l *Locator) BinaryName() string {
	return l.binaryName
}

// ManagedPath returns where a downloaded encoder lives, whether or not it
// exists yet. Windows builds keep the archive's bin/ layout.
func (l *Locator) ManagedPath() string {
	exe := l.platform.ExecutableName(l.binaryName)
	if l.platform == platform.Windows {
		return filepath.Join(l.cacheDir, "bin", exe)
	}
	return filepath.Join(l.cacheDir, exe)
}

// CacheDir returns the managed cache directory.
func (l *Locator) CacheDir() string {
	return l.cacheDir
}

// FindOnSystemPath reports whether name resolves to an executable that runs.
// The binary is launched once with -version to rule out broken shims.
func (l *Locator) FindOnSystemPath(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	resolved, err := l.lookPath(name)
	if err != nil {
		l.logger.Debug("encoder not on search path", logging.String(logging.FieldPath, name), logging.Error(err))
		return false
	}
	return l.Usable(ctx, resolved)
}

// Usable reports whether the binary at path is executable and answers a
// -version query with exit status zero.
func (l *Locator) Usable(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !isExecutable(path, info) {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	probeCtx, cancel := context.WithTimeout(ctx, l.probeTimeout)
	defer cancel()

	out, err := l.runner.Run(probeCtx, path, "-version")
	if err != nil {
		l.logger.Debug("encoder probe failed", logging.String(logging.FieldPath, path), logging.Error(err))
		return false
	}
	if out.ExitCode != 0 {
		l.logger.Debug("encoder probe exited non-zero",
			logging.String(logging.FieldPath, path),
			logging.Int("exit_code", out.ExitCode),
		)
		return false
	}
	return true
}

// FindInManagedCache returns the managed path when a previously downloaded
// binary is present and executable.
func (l *Locator) FindInManagedCache() (string, bool) {
	if strings.TrimSpace(l.cacheDir) == "" {
		return "", false
	}
	path := l.ManagedPath()
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !isExecutable(path, info) {
		return "", false
	}
	return path, true
}
