package buildinfo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"encoderkit/internal/logging"
	"encoderkit/internal/metrics"
	"encoderkit/internal/procexec"
)

// QueryFlag is the argument that makes the encoder print its build configuration.
const QueryFlag = "-buildconf"

const defaultTimeout = 10 * time.Second

// Cache holds the build configuration text of one encoder binary.
type Cache struct {
	runner  procexec.Runner
	timeout time.Duration
	logger  *slog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	text   string
	loaded bool
}

// New constructs an empty Cache. A nil runner uses os/exec; a non-positive
// timeout falls back to ten seconds.
func New(runner procexec.Runner, timeout time.Duration, logger *slog.Logger) *Cache {
	if runner == nil {
		runner = procexec.ExecRunner{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Cache{
		runner:  runner,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "buildinfo"),
	}
}

// Get returns the cached build configuration, invoking path on first use.
// Concurrent first callers share one invocation. A non-zero exit status is
// ignored; a binary that cannot be launched returns an error and leaves the
// cache empty so a later call can try again. The shared invocation is bounded
// by the cache timeout; ctx only bounds how long this caller waits.
func (c *Cache) Get(ctx context.Context, path string) (string, error) {
	if text, ok := c.Cached(); ok {
		return text, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	queryCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("buildconf", func() (any, error) {
		if text, ok := c.Cached(); ok {
			return text, nil
		}
		text, err := c.query(queryCtx, path)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.text = text
		c.loaded = true
		c.mu.Unlock()
		return text, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("query build configuration of %s: %w", path, ctx.Err())
	}
}

// Cached returns the stored text without launching anything.
func (c *Cache) Cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text, c.loaded
}

func (c *Cache) query(ctx context.Context, path string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.runner.Run(runCtx, path, QueryFlag)
	if err != nil {
		metrics.BuildInfoProbesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("query build configuration of %s: %w", path, err)
	}
	if out.ExitCode != 0 {
		c.logger.Debug("build configuration query exited non-zero",
			logging.String(logging.FieldPath, path),
			logging.Int("exit_code", out.ExitCode),
		)
	}
	metrics.BuildInfoProbesTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("build configuration cached",
		logging.String(logging.FieldPath, path),
		logging.Int("bytes", len(out.Stderr)),
	)
	return out.Stderr, nil
}
