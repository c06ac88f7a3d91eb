package capability

import "strings"

// Feature is a compile-time encoder option.
type Feature string

const (
	FeatureGPL     Feature = "enable-gpl"
	FeatureLibx265 Feature = "enable-libx265"
	FeatureLibvpx  Feature = "enable-libvpx"
)

// Features lists every recognised feature in display order.
func Features() []Feature {
	return []Feature{FeatureGPL, FeatureLibx265, FeatureLibvpx}
}

// ParseFeature accepts a feature name with or without the leading "--" or
// "enable-" prefix, e.g. "libx265", "enable-libx265", "--enable-libx265".
func ParseFeature(name string) (Feature, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "--")
	if !strings.HasPrefix(name, "enable-") {
		name = "enable-" + name
	}
	for _, f := range Features() {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Marker is the substring looked for in the build configuration.
func (f Feature) Marker() string {
	return string(f)
}
