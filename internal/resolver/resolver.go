package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"encoderkit/internal/logging"
	"encoderkit/internal/manifest"
	"encoderkit/internal/metrics"
)

// Source records which step produced a Location.
type Source string

const (
	SourceExplicit       Source = "explicit"
	SourceSystemPath     Source = "system_path"
	SourceManagedCache   Source = "managed_cache"
	SourceDownloaded     Source = "downloaded"
	SourceDownloadFailed Source = "download_failed"
	SourceRetryDeferred  Source = "retry_deferred"
)

// ErrRetryDeferred marks a Location returned without downloading because the
// previous attempt failed inside the retry cooldown.
var ErrRetryDeferred = errors.New("download retry deferred")

// Location is the outcome of a resolution.
type Location struct {
	// Path is a bare command name for system path hits, otherwise a file path.
	Path   string
	Source Source
	// DownloadErr holds the download failure for SourceDownloadFailed and
	// SourceRetryDeferred. It is informational; Path is still returned.
	DownloadErr error
}

// Finder probes for existing binaries. *locator.Locator satisfies it.
type Finder interface {
	BinaryName() string
	ManagedPath() string
	FindOnSystemPath(ctx context.Context, name string) bool
	FindInManagedCache() (string, bool)
}

// Downloader installs the encoder at the managed path.
type Downloader interface {
	Download(ctx context.Context) error
}

// History reports previous download attempts. *manifest.Store satisfies it.
type History interface {
	LastAttempt(ctx context.Context, destination string) (*manifest.Attempt, error)
}

// Options configures a Resolver.
type Options struct {
	Finder     Finder
	Downloader Downloader
	History    History
	// Explicit is a configured executable path or command tried first.
	Explicit string
	Cooldown time.Duration
	Logger   *slog.Logger
	// Now overrides the clock used for cooldown checks.
	Now func() time.Time
}

// Resolver resolves the encoder executable.
type Resolver struct {
	finder     Finder
	downloader Downloader
	history    History
	explicit   string
	cooldown   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs a Resolver. Finder and Downloader are required.
func New(opts Options) (*Resolver, error) {
	if opts.Finder == nil {
		return nil, errors.New("resolver: finder required")
	}
	if opts.Downloader == nil {
		return nil, errors.New("resolver: downloader required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		finder:     opts.Finder,
		downloader: opts.Downloader,
		history:    opts.History,
		explicit:   strings.TrimSpace(opts.Explicit),
		cooldown:   opts.Cooldown,
		logger:     logging.NewComponentLogger(opts.Logger, "resolver"),
		now:        now,
	}, nil
}

// Resolve returns a path or command for the encoder. It never fails: a broken
// download still yields the managed path.
func (r *Resolver) Resolve(ctx context.Context) Location {
	if ctx == nil {
		ctx = context.Background()
	}
	loc := r.resolve(ctx)
	metrics.ResolutionsTotal.WithLabelValues(string(loc.Source)).Inc()
	r.logger.Debug("encoder resolved",
		logging.String(logging.FieldPath, loc.Path),
		logging.String("source", string(loc.Source)),
	)
	return loc
}

func (r *Resolver) resolve(ctx context.Context) Location {
	if loc, ok := r.existing(ctx); ok {
		return loc
	}

	managed := r.finder.ManagedPath()
	if deferred := r.deferredAttempt(ctx, managed); deferred != nil {
		err := fmt.Errorf("%w: last attempt failed at %s: %s",
			ErrRetryDeferred, deferred.FinishedAt.Format(time.RFC3339), deferred.ErrorMessage)
		r.logger.Info("skipping encoder download during retry cooldown",
			logging.String(logging.FieldPath, managed),
			logging.Duration("cooldown", r.cooldown),
		)
		return Location{Path: managed, Source: SourceRetryDeferred, DownloadErr: err}
	}

	if err := r.downloader.Download(ctx); err != nil {
		return Location{Path: managed, Source: SourceDownloadFailed, DownloadErr: err}
	}
	return Location{Path: managed, Source: SourceDownloaded}
}

// FindExisting returns the explicit, system path, or managed cache binary
// without downloading anything.
func (r *Resolver) FindExisting(ctx context.Context) (string, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	loc, ok := r.existing(ctx)
	return loc.Path, ok
}

func (r *Resolver) existing(ctx context.Context) (Location, bool) {
	if r.explicit != "" {
		if r.finder.FindOnSystemPath(ctx, r.explicit) {
			return Location{Path: r.explicit, Source: SourceExplicit}, true
		}
		logging.WarnWithContext(r.logger, "configured encoder executable is not usable",
			"explicit_executable_unusable",
			logging.String(logging.FieldPath, r.explicit),
			logging.String(logging.FieldErrorHint, "fix encoder.executable or unset it"),
			logging.String(logging.FieldImpact, "falling back to search path and managed cache"),
		)
	}

	name := r.finder.BinaryName()
	if r.finder.FindOnSystemPath(ctx, name) {
		return Location{Path: name, Source: SourceSystemPath}, true
	}

	if path, ok := r.finder.FindInManagedCache(); ok {
		return Location{Path: path, Source: SourceManagedCache}, true
	}
	return Location{}, false
}

// deferredAttempt returns the last failed attempt when it is still inside the
// cooldown window. Attempts that ended because a caller cancelled say nothing
// about the source and never defer.
func (r *Resolver) deferredAttempt(ctx context.Context, destination string) *manifest.Attempt {
	if r.history == nil || r.cooldown <= 0 {
		return nil
	}
	last, err := r.history.LastAttempt(ctx, destination)
	if err != nil {
		r.logger.Debug("download history unavailable", logging.Error(err))
		return nil
	}
	if last == nil || last.Succeeded() || cancelledAttempt(last) {
		return nil
	}
	if r.now().Sub(last.FinishedAt) >= r.cooldown {
		return nil
	}
	return last
}

func cancelledAttempt(a *manifest.Attempt) bool {
	return strings.HasSuffix(a.ErrorMessage, context.Canceled.Error())
}
