package download

import (
	"errors"
	"fmt"
)

// Stage names the step of an install that failed.
type Stage string

const (
	StageSource  Stage = "source"
	StageLock    Stage = "lock"
	StageFetch   Stage = "fetch"
	StageVerify  Stage = "verify"
	StageExtract Stage = "extract"
	StageInstall Stage = "install"
	StageChmod   Stage = "chmod"
)

var (
	// ErrNoSource indicates no download URL is configured for the platform.
	ErrNoSource = errors.New("no download source configured")
	// ErrChecksumMismatch indicates the fetched payload did not match the configured digest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrMemberNotFound indicates an archive did not contain the encoder executable.
	ErrMemberNotFound = errors.New("encoder executable not found in archive")
)

// Error describes a failed install.
type Error struct {
	Stage Stage
	URL   string
	Err   error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("download encoder: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("download encoder from %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage recorded in err, or "" when err is not a
// download error.
func StageOf(err error) Stage {
	var dlErr *Error
	if errors.As(err, &dlErr) {
		return dlErr.Stage
	}
	return ""
}
