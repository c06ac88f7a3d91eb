package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"

	"encoderkit/internal/config"
	"encoderkit/internal/logging"
	"encoderkit/internal/manifest"
	"encoderkit/internal/metrics"
	"encoderkit/internal/platform"
)

const lockRetryDelay = 250 * time.Millisecond

// Recorder persists download attempts. *manifest.Store satisfies it.
type Recorder interface {
	RecordAttempt(ctx context.Context, attempt manifest.Attempt) (int64, error)
}

// Options configures a Downloader.
type Options struct {
	Encoder config.Encoder
	S3      config.S3
	// Destination is the managed path the encoder is installed at.
	Destination string
	Platform    platform.Platform
	// ArchKey overrides the "<goos>-<goarch>" key used for source lookup.
	ArchKey string
	// Fetcher replaces the scheme-based fetchers when set.
	Fetcher  Fetcher
	Recorder Recorder
	// Installed reports whether an existing destination is usable. When it
	// returns true after the lock is acquired the download is skipped.
	Installed func(ctx context.Context, path string) bool
	Logger    *slog.Logger
}

// Downloader installs the encoder at a fixed destination.
type Downloader struct {
	encoder     config.Encoder
	destination string
	platform    platform.Platform
	archKey     string
	fetcher     Fetcher
	httpFetcher Fetcher
	s3Fetcher   Fetcher
	recorder    Recorder
	installed   func(ctx context.Context, path string) bool
	logger      *slog.Logger
	group       singleflight.Group
}

// New constructs a Downloader.
func New(opts Options) *Downloader {
	archKey := strings.TrimSpace(opts.ArchKey)
	if archKey == "" {
		archKey = platform.Key()
	}
	return &Downloader{
		encoder:     opts.Encoder,
		destination: opts.Destination,
		platform:    opts.Platform,
		archKey:     archKey,
		fetcher:     opts.Fetcher,
		httpFetcher: HTTPFetcher{},
		s3Fetcher:   NewS3Fetcher(opts.S3),
		recorder:    opts.Recorder,
		installed:   opts.Installed,
		logger:      logging.NewComponentLogger(opts.Logger, "download"),
	}
}

// Destination returns the managed path the encoder is installed at.
func (d *Downloader) Destination() string {
	return d.destination
}

// Source returns the URL and source key chosen for this platform.
func (d *Downloader) Source() (string, string, bool) {
	return d.encoder.SourceFor(d.archKey, d.platform.String())
}

// Download installs the encoder at the destination. Concurrent callers for the
// same destination share one transfer and observe the same result. The shared
// transfer is bounded by the download timeout only; a caller whose ctx ends
// stops waiting while the transfer continues for the others.
func (d *Downloader) Download(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := d.group.DoChan(d.destination, func() (any, error) {
		return nil, d.download(flightCtx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &Error{Stage: StageFetch, Err: ctx.Err()}
	}
}

type result struct {
	sourceURL string
	sourceKey string
	sha256    string
	size      int64
	verified  bool
}

func (d *Downloader) download(ctx context.Context) error {
	started := time.Now()
	res := result{}

	if timeout := d.encoder.DownloadTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rawURL, key, ok := d.Source()
	if !ok {
		err := &Error{Stage: StageSource, Err: fmt.Errorf("%w for %s (%s)", ErrNoSource, d.archKey, d.platform)}
		d.finish(ctx, started, res, err)
		return err
	}
	res.sourceURL = rawURL
	res.sourceKey = key

	dir := filepath.Dir(d.destination)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		dlErr := &Error{Stage: StageInstall, URL: rawURL, Err: fmt.Errorf("create cache directory: %w", err)}
		d.finish(ctx, started, res, dlErr)
		return dlErr
	}

	lock := flock.New(d.destination + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = errors.New("lock not acquired")
		}
		dlErr := &Error{Stage: StageLock, URL: rawURL, Err: err}
		d.finish(ctx, started, res, dlErr)
		return dlErr
	}
	defer func() { _ = lock.Unlock() }()

	if d.installed != nil && d.installed(ctx, d.destination) {
		d.logger.Debug("encoder already installed", logging.String(logging.FieldPath, d.destination))
		return nil
	}

	d.logger.Info("downloading encoder",
		logging.String(logging.FieldURL, rawURL),
		logging.String(logging.FieldPath, d.destination),
	)

	partPath := d.destination + ".part"
	defer os.Remove(partPath)

	if err := d.fetch(ctx, rawURL, partPath, &res); err != nil {
		d.finish(ctx, started, res, err)
		return err
	}
	if err := d.verify(rawURL, key, &res); err != nil {
		d.finish(ctx, started, res, err)
		return err
	}
	if err := d.install(rawURL, partPath, &res); err != nil {
		d.finish(ctx, started, res, err)
		return err
	}

	d.finish(ctx, started, res, nil)
	d.logger.Info("encoder installed",
		logging.String(logging.FieldPath, d.destination),
		logging.Int64("bytes", res.size),
		logging.Bool("verified", res.verified),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (d *Downloader) fetch(ctx context.Context, rawURL, partPath string, res *result) error {
	fetcher, err := d.fetcherFor(rawURL)
	if err != nil {
		return &Error{Stage: StageFetch, URL: rawURL, Err: err}
	}
	body, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return &Error{Stage: StageFetch, URL: rawURL, Err: err}
	}
	defer body.Close()

	out, err := os.OpenFile(partPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &Error{Stage: StageFetch, URL: rawURL, Err: fmt.Errorf("create temp file: %w", err)}
	}
	hasher := sha256.New()
	written, copyErr := io.Copy(io.MultiWriter(out, hasher), body)
	closeErr := out.Close()
	if copyErr != nil {
		return &Error{Stage: StageFetch, URL: rawURL, Err: copyErr}
	}
	if closeErr != nil {
		return &Error{Stage: StageFetch, URL: rawURL, Err: fmt.Errorf("close temp file: %w", closeErr)}
	}
	res.size = written
	res.sha256 = hex.EncodeToString(hasher.Sum(nil))
	return nil
}

func (d *Downloader) verify(rawURL, key string, res *result) error {
	expected := d.encoder.ChecksumFor(key)
	if expected == "" {
		logging.WarnWithContext(d.logger, "encoder download not verified",
			"download_unverified",
			logging.String(logging.FieldURL, rawURL),
			logging.String("sha256", res.sha256),
			logging.String(logging.FieldErrorHint, "add encoder.checksums."+key+" to pin the download"),
			logging.String(logging.FieldImpact, "a tampered or truncated binary would not be detected"),
		)
		return nil
	}
	if res.sha256 != expected {
		return &Error{
			Stage: StageVerify,
			URL:   rawURL,
			Err:   fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, res.sha256),
		}
	}
	res.verified = true
	return nil
}

func (d *Downloader) install(rawURL, partPath string, res *result) error {
	zipped, err := isZip(partPath)
	if err != nil {
		return &Error{Stage: StageExtract, URL: rawURL, Err: err}
	}
	source := partPath
	if zipped {
		extracted := d.destination + ".extract"
		defer os.Remove(extracted)
		exeName := d.platform.ExecutableName(d.encoder.BinaryName)
		if _, err := extractMember(partPath, exeName, extracted); err != nil {
			return &Error{Stage: StageExtract, URL: rawURL, Err: err}
		}
		source = extracted
	}
	// The mode is set before the rename so the destination never appears
	// without its execute bits.
	if d.platform == platform.Posix {
		if err := os.Chmod(source, 0o755); err != nil {
			return &Error{Stage: StageChmod, URL: rawURL, Err: err}
		}
	}
	if err := os.Rename(source, d.destination); err != nil {
		return &Error{Stage: StageInstall, URL: rawURL, Err: fmt.Errorf("replace %s: %w", d.destination, err)}
	}
	return nil
}

func (d *Downloader) fetcherFor(rawURL string) (Fetcher, error) {
	if d.fetcher != nil {
		return d.fetcher, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return d.httpFetcher, nil
	case "s3":
		return d.s3Fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", parsed.Scheme)
	}
}

// finish records the attempt in the manifest and updates metrics.
func (d *Downloader) finish(ctx context.Context, started time.Time, res result, err error) {
	finished := time.Now()
	outcome := manifest.OutcomeSuccess
	if err != nil {
		outcome = manifest.OutcomeFailed
	}
	metrics.DownloadsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.DownloadDuration.Observe(finished.Sub(started).Seconds())
	if err == nil {
		metrics.DownloadBytesTotal.Add(float64(res.size))
	}

	if err != nil {
		d.logger.Warn("encoder download failed",
			logging.String(logging.FieldURL, res.sourceURL),
			logging.String(logging.FieldPath, d.destination),
			logging.String("stage", string(StageOf(err))),
			logging.Error(err),
			logging.String(logging.FieldEventType, "download_failed"),
			logging.String(logging.FieldErrorHint, "check network access or configure encoder.executable"),
			logging.String(logging.FieldImpact, "encoder resolution falls back to the managed path"),
		)
	}

	if d.recorder == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		d.logger.Debug("cancelled download not recorded", logging.String(logging.FieldPath, d.destination))
		return
	}
	attempt := manifest.Attempt{
		Destination: d.destination,
		SourceURL:   res.sourceURL,
		SourceKey:   res.sourceKey,
		Outcome:     outcome,
		SHA256:      res.sha256,
		SizeBytes:   res.size,
		Verified:    res.verified,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if err != nil {
		attempt.Stage = string(StageOf(err))
		attempt.ErrorMessage = err.Error()
	}
	// The timeout may already have fired; the record still matters.
	recordCtx := context.WithoutCancel(ctx)
	if _, recErr := d.recorder.RecordAttempt(recordCtx, attempt); recErr != nil {
		logging.WarnWithContext(d.logger, "failed to record download attempt",
			"manifest_write_failed",
			logging.String(logging.FieldPath, d.destination),
			logging.Error(recErr),
			logging.String(logging.FieldImpact, "retry cooldown and status history will miss this attempt"),
		)
	}
}
