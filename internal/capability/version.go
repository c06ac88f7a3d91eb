package capability

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`ffmpeg version (\d+)\.(\d+)(?:\.(\d+))?`)

// Version is a parsed encoder release number.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion extracts the first "ffmpeg version X.Y[.Z]" in text. Patch is
// zero when absent. Unrecognised text yields ok=false.
func ParseVersion(text string) (Version, bool) {
	match := versionPattern.FindStringSubmatch(text)
	if match == nil {
		return Version{}, false
	}
	var v Version
	var err error
	if v.Major, err = strconv.Atoi(match[1]); err != nil {
		return Version{}, false
	}
	if v.Minor, err = strconv.Atoi(match[2]); err != nil {
		return Version{}, false
	}
	if match[3] != "" {
		if v.Patch, err = strconv.Atoi(match[3]); err != nil {
			return Version{}, false
		}
	}
	return v, true
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is older than, equal to, or newer than other.
func (v Version) Compare(other Version) int {
	for _, pair := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}
