package fragment

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Window describes the span of a source to address. StartFrom and Duration
// are in frames; StartFrom is negative when the start of the source is
// trimmed.
type Window struct {
	SourceURL string
	StartFrom float64
	Duration  float64
	FPS       float64
}

// Address returns w.SourceURL with a "#t=" time range appended. Data URLs,
// URLs that already carry a fragment, unparsable URLs, and windows with a
// non-finite start are returned unchanged. A non-finite duration yields a
// start-only range.
func Address(w Window) string {
	src := w.SourceURL
	if strings.HasPrefix(src, "data:") {
		return src
	}
	parsed, err := url.Parse(src)
	if err != nil || parsed.Fragment != "" || parsed.RawFragment != "" {
		return src
	}
	if !finite(w.StartFrom) || !finite(w.FPS) || w.FPS <= 0 {
		return src
	}

	var b strings.Builder
	b.WriteString(src)
	b.WriteString("#t=")
	b.WriteString(seconds(-w.StartFrom, w.FPS))
	if !finite(w.Duration) {
		return b.String()
	}
	b.WriteByte(',')
	b.WriteString(seconds(w.Duration, w.FPS))
	return b.String()
}

// seconds converts frames to seconds rounded half-up to two decimals.
func seconds(frames, fps float64) string {
	v := math.Floor(frames/fps*100+0.5) / 100
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Addresser keeps the addressed URL stable while successive windows on the
// same source stay inside the first one. A window outside the remembered one,
// or on another source, replaces it. Safe for concurrent use.
type Addresser struct {
	mu   sync.Mutex
	last *Window
}

// Address returns the fragment URL for the remembered window when w is a
// subset of it, otherwise for w itself.
func (a *Addresser) Address(w Window) string {
	a.mu.Lock()
	if a.last == nil || a.last.SourceURL != w.SourceURL || !w.within(*a.last) {
		next := w
		a.last = &next
	}
	current := *a.last
	a.mu.Unlock()

	current.FPS = w.FPS
	return Address(current)
}

// Reset forgets the remembered window.
func (a *Addresser) Reset() {
	a.mu.Lock()
	a.last = nil
	a.mu.Unlock()
}

// within reports whether w covers no frames outside outer.
func (w Window) within(outer Window) bool {
	outerStart, start := -outer.StartFrom, -w.StartFrom
	return outerStart <= start && outerStart+outer.Duration >= start+w.Duration
}
