package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"encoderkit/internal/buildinfo"
	"encoderkit/internal/capability"
	"encoderkit/internal/config"
	"encoderkit/internal/download"
	"encoderkit/internal/fragment"
	"encoderkit/internal/locator"
	"encoderkit/internal/logging"
	"encoderkit/internal/manifest"
	"encoderkit/internal/platform"
	"encoderkit/internal/procexec"
	"encoderkit/internal/resolver"
)

// Option customizes Open.
type Option func(*options)

type options struct {
	runner   procexec.Runner
	platform platform.Platform
	archKey  string
	fetcher  download.Fetcher
}

// WithRunner replaces the process runner used for probes and build-info queries.
func WithRunner(runner procexec.Runner) Option {
	return func(o *options) { o.runner = runner }
}

// WithPlatform overrides the detected platform family.
func WithPlatform(p platform.Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithArchKey overrides the "<goos>-<goarch>" key used to pick a download source.
func WithArchKey(key string) Option {
	return func(o *options) { o.archKey = key }
}

// WithFetcher replaces the scheme-based download fetchers.
func WithFetcher(f download.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// Session is one render session's view of the encoder.
type Session struct {
	id     string
	cfg    *config.Config
	logger *slog.Logger

	store      *manifest.Store
	locator    *locator.Locator
	downloader *download.Downloader
	resolver   *resolver.Resolver
	buildInfo  *buildinfo.Cache
	detector   *capability.Detector
	fragments  *fragment.Addresser
}

// Open builds a session from cfg. The install manifest is opened under the
// configured state directory and stays open until Close.
func Open(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: nil config")
	}
	o := options{platform: platform.Current()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runner == nil {
		o.runner = procexec.ExecRunner{}
	}

	id := uuid.NewString()
	logger = logging.WithSessionID(logger, id)

	store, err := manifest.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	loc := locator.New(locator.Options{
		BinaryName:   cfg.Encoder.BinaryName,
		CacheDir:     cfg.Encoder.CacheDir,
		Platform:     o.platform,
		Runner:       o.runner,
		ProbeTimeout: cfg.Encoder.ProbeTimeout(),
		Logger:       logger,
	})
	dl := download.New(download.Options{
		Encoder:     cfg.Encoder,
		S3:          cfg.S3,
		Destination: loc.ManagedPath(),
		Platform:    o.platform,
		ArchKey:     o.archKey,
		Fetcher:     o.fetcher,
		Recorder:    store,
		Installed: func(ctx context.Context, path string) bool {
			_, ok := loc.FindInManagedCache()
			return ok && loc.Usable(ctx, path)
		},
		Logger: logger,
	})
	res, err := resolver.New(resolver.Options{
		Finder:     loc,
		Downloader: dl,
		History:    store,
		Explicit:   cfg.Encoder.Executable,
		Cooldown:   cfg.Encoder.RetryCooldown(),
		Logger:     logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	cache := buildinfo.New(o.runner, cfg.Encoder.ProbeTimeout(), logger)

	s := &Session{
		id:         id,
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "session"),
		store:      store,
		locator:    loc,
		downloader: dl,
		resolver:   res,
		buildInfo:  cache,
		detector:   capability.NewDetector(res, cache, logger),
		fragments:  &fragment.Addresser{},
	}
	s.logger.Debug("session opened",
		logging.String(logging.FieldPath, loc.ManagedPath()),
		logging.String("platform", o.platform.String()),
	)
	return s, nil
}

// ID returns the session identifier attached to log records.
func (s *Session) ID() string {
	return s.id
}

// Context returns ctx tagged with the session ID.
func (s *Session) Context(ctx context.Context) context.Context {
	return logging.ContextWithSessionID(ctx, s.id)
}

// ManagedPath returns where a downloaded encoder is installed.
func (s *Session) ManagedPath() string {
	return s.locator.ManagedPath()
}

// Resolve returns the encoder location, downloading when nothing is installed.
func (s *Session) Resolve(ctx context.Context) resolver.Location {
	return s.resolver.Resolve(s.Context(ctx))
}

// FindExisting returns an installed encoder without downloading one.
func (s *Session) FindExisting(ctx context.Context) (string, bool) {
	return s.resolver.FindExisting(s.Context(ctx))
}

// ManifestPath returns the install manifest database location.
func (s *Session) ManifestPath() string {
	return s.store.Path()
}

// Download installs the encoder into the managed cache regardless of what
// the system path offers.
func (s *Session) Download(ctx context.Context) error {
	return s.downloader.Download(s.Context(ctx))
}

// BuildInfo returns the encoder's build configuration, resolving the binary
// first. The text is fetched once per session.
func (s *Session) BuildInfo(ctx context.Context) (string, error) {
	if text, ok := s.buildInfo.Cached(); ok {
		return text, nil
	}
	ctx = s.Context(ctx)
	loc := s.resolver.Resolve(ctx)
	text, err := s.buildInfo.Get(ctx, loc.Path)
	if err != nil && loc.DownloadErr != nil {
		return "", fmt.Errorf("%w (download: %v)", err, loc.DownloadErr)
	}
	return text, err
}

// Version returns the encoder version parsed from the cached build
// configuration.
func (s *Session) Version(ctx context.Context) (capability.Version, bool) {
	text, err := s.BuildInfo(ctx)
	if err != nil {
		s.logger.Debug("encoder version unavailable", logging.Error(err))
		return capability.Version{}, false
	}
	return capability.ParseVersion(text)
}

// HasFeature reports whether the local encoder was built with f. Sessions
// configured for remote execution report every feature as present.
func (s *Session) HasFeature(ctx context.Context, f capability.Feature) bool {
	return s.detector.HasFeature(s.Context(ctx), f, s.cfg.Encoder.Remote)
}

// Fragments returns the session's stateful fragment addresser.
func (s *Session) Fragments() *fragment.Addresser {
	return s.fragments
}

// History lists recent download attempts, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]manifest.Attempt, error) {
	return s.store.List(ctx, limit)
}

// LastInstall returns the most recent successful download into the managed
// cache, or nil when the encoder was never downloaded.
func (s *Session) LastInstall(ctx context.Context) (*manifest.Attempt, error) {
	return s.store.LastSuccess(ctx, s.locator.ManagedPath())
}

// RetryCooldown is the configured delay between failed download attempts.
func (s *Session) RetryCooldown() time.Duration {
	return s.cfg.Encoder.RetryCooldown()
}

// Close releases the manifest database.
func (s *Session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}
