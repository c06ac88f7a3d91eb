package fragment

import (
	"math"
	"sync"
	"testing"
)

func TestAddress(t *testing.T) {
	cases := []struct {
		name string
		in   Window
		want string
	}{
		{"start and duration", Window{SourceURL: "video.mp4", StartFrom: -30, Duration: 10, FPS: 30}, "video.mp4#t=1,0.33"},
		{"zero start", Window{SourceURL: "https://cdn.example.com/a.webm", StartFrom: 0, Duration: 60, FPS: 30}, "https://cdn.example.com/a.webm#t=0,2"},
		{"half rounds up", Window{SourceURL: "v.mp4", StartFrom: -1, Duration: 3, FPS: 8}, "v.mp4#t=0.13,0.38"},
		{"positive start renders negative", Window{SourceURL: "v.mp4", StartFrom: 15, Duration: 30, FPS: 30}, "v.mp4#t=-0.5,1"},
		{"infinite duration", Window{SourceURL: "v.mp4", StartFrom: -45, Duration: math.Inf(1), FPS: 30}, "v.mp4#t=1.5"},
		{"nan duration", Window{SourceURL: "v.mp4", StartFrom: -30, Duration: math.NaN(), FPS: 30}, "v.mp4#t=1"},
		{"query string kept", Window{SourceURL: "https://x.test/v.mp4?token=abc", StartFrom: -60, Duration: 30, FPS: 30}, "https://x.test/v.mp4?token=abc#t=2,1"},
		{"data url", Window{SourceURL: "data:video/mp4;base64,AAAA", StartFrom: -30, Duration: 10, FPS: 30}, "data:video/mp4;base64,AAAA"},
		{"existing fragment", Window{SourceURL: "video.mp4#t=5", StartFrom: -30, Duration: 10, FPS: 30}, "video.mp4#t=5"},
		{"non-finite start", Window{SourceURL: "video.mp4", StartFrom: math.Inf(-1), Duration: 10, FPS: 30}, "video.mp4"},
		{"nan start", Window{SourceURL: "video.mp4", StartFrom: math.NaN(), Duration: 10, FPS: 30}, "video.mp4"},
		{"zero fps", Window{SourceURL: "video.mp4", StartFrom: -30, Duration: 10, FPS: 0}, "video.mp4"},
		{"unparsable url", Window{SourceURL: "http://[::1", StartFrom: -30, Duration: 10, FPS: 30}, "http://[::1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Address(tc.in); got != tc.want {
				t.Fatalf("Address(%+v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSecondsNeverRendersNegativeZero(t *testing.T) {
	for _, frames := range []float64{math.Copysign(0, -1), -0.0001, 0.0001} {
		if got := seconds(frames, 30); got != "0" {
			t.Fatalf("seconds(%v, 30) = %q, want 0", frames, got)
		}
	}
}

func TestAddresserReusesEnclosingWindow(t *testing.T) {
	var a Addresser
	first := a.Address(Window{SourceURL: "video.mp4", StartFrom: -30, Duration: 90, FPS: 30})
	if first != "video.mp4#t=1,3" {
		t.Fatalf("unexpected first address: %q", first)
	}

	// Frames 45..75 sit inside 30..120.
	sub := a.Address(Window{SourceURL: "video.mp4", StartFrom: -45, Duration: 30, FPS: 30})
	if sub != first {
		t.Fatalf("expected subset window to reuse %q, got %q", first, sub)
	}

	// Frames 15..45 start before the remembered window.
	wider := a.Address(Window{SourceURL: "video.mp4", StartFrom: -15, Duration: 30, FPS: 30})
	if wider != "video.mp4#t=0.5,1" {
		t.Fatalf("expected new window, got %q", wider)
	}
}

func TestAddresserResetsOnSourceChange(t *testing.T) {
	var a Addresser
	a.Address(Window{SourceURL: "a.mp4", StartFrom: -30, Duration: 90, FPS: 30})

	got := a.Address(Window{SourceURL: "b.mp4", StartFrom: -45, Duration: 30, FPS: 30})
	if got != "b.mp4#t=1.5,1" {
		t.Fatalf("expected fresh window for new source, got %q", got)
	}
	back := a.Address(Window{SourceURL: "a.mp4", StartFrom: -45, Duration: 30, FPS: 30})
	if back != "a.mp4#t=1.5,1" {
		t.Fatalf("expected window to be recomputed after switching back, got %q", back)
	}
}

func TestAddresserReset(t *testing.T) {
	var a Addresser
	a.Address(Window{SourceURL: "a.mp4", StartFrom: -30, Duration: 90, FPS: 30})
	a.Reset()
	got := a.Address(Window{SourceURL: "a.mp4", StartFrom: -45, Duration: 30, FPS: 30})
	if got != "a.mp4#t=1.5,1" {
		t.Fatalf("expected reset to drop remembered window, got %q", got)
	}
}

func TestAddresserConcurrentUse(t *testing.T) {
	var a Addresser
	a.Address(Window{SourceURL: "v.mp4", StartFrom: 0, Duration: 300, FPS: 30})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(offset float64) {
			defer wg.Done()
			got := a.Address(Window{SourceURL: "v.mp4", StartFrom: -offset, Duration: 10, FPS: 30})
			if got != "v.mp4#t=0,10" {
				t.Errorf("expected remembered window, got %q", got)
			}
		}(float64(i))
	}
	wg.Wait()
}
