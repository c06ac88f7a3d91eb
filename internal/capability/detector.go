package capability

import (
	"context"
	"log/slog"
	"strings"

	"encoderkit/internal/logging"
)

// Finder locates an already-present encoder without downloading one.
type Finder interface {
	FindExisting(ctx context.Context) (string, bool)
}

// BuildInfo returns the build configuration text for the binary at path.
// *buildinfo.Cache satisfies it.
type BuildInfo interface {
	Get(ctx context.Context, path string) (string, error)
}

// Detector answers capability questions about the local encoder.
type Detector struct {
	finder Finder
	info   BuildInfo
	logger *slog.Logger
}

// NewDetector constructs a Detector.
func NewDetector(finder Finder, info BuildInfo, logger *slog.Logger) *Detector {
	return &Detector{
		finder: finder,
		info:   info,
		logger: logging.NewComponentLogger(logger, "capability"),
	}
}

// HasFeature reports whether the encoder was built with f. Remote execution
// environments are assumed to be provisioned with every feature. Without a
// usable local binary the answer is false.
func (d *Detector) HasFeature(ctx context.Context, f Feature, remote bool) bool {
	if remote {
		return true
	}
	text, ok := d.buildInfo(ctx)
	if !ok {
		return false
	}
	return strings.Contains(text, f.Marker())
}

// Version parses the encoder version from the build configuration.
func (d *Detector) Version(ctx context.Context) (Version, bool) {
	text, ok := d.buildInfo(ctx)
	if !ok {
		return Version{}, false
	}
	return ParseVersion(text)
}

func (d *Detector) buildInfo(ctx context.Context) (string, bool) {
	path, ok := d.finder.FindExisting(ctx)
	if !ok {
		d.logger.Debug("no local encoder available for capability check")
		return "", false
	}
	text, err := d.info.Get(ctx, path)
	if err != nil {
		d.logger.Debug("build configuration unavailable",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
		return "", false
	}
	return text, true
}
