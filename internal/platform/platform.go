package platform

import (
	"runtime"
	"sync"
)

// Platform identifies an operating-system family.
type Platform int

const (
	// Posix covers Linux, macOS, and the BSDs.
	Posix Platform = iota
	// Windows covers every GOOS=windows build.
	Windows
)

var (
	currentOnce sync.Once
	current     Platform
)

// Current returns the platform family of the running process. The value is
// computed once and never changes afterwards.
func Current() Platform {
	currentOnce.Do(func() {
		current = FromGOOS(runtime.GOOS)
	})
	return current
}

// FromGOOS maps a GOOS value onto a platform family.
func FromGOOS(goos string) Platform {
	if goos == "windows" {
		return Windows
	}
	return Posix
}

// String returns the family name used in configuration keys.
func (p Platform) String() string {
	if p == Windows {
		return "windows"
	}
	return "posix"
}

// ExecutableName returns base with the platform executable suffix applied.
func (p Platform) ExecutableName(base string) string {
	if p == Windows {
		return base + ".exe"
	}
	return base
}

// Key returns the "<goos>-<goarch>" identifier of the running process.
func Key() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}
