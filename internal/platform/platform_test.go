package platform

import (
	"runtime"
	"testing"
)

func TestCurrentIsStable(t *testing.T) {
	first := Current()
	for i := 0; i < 5; i++ {
		if got := Current(); got != first {
			t.Fatalf("platform changed between calls: %v then %v", first, got)
		}
	}
	if first != FromGOOS(runtime.GOOS) {
		t.Fatalf("expected %v for GOOS %s, got %v", FromGOOS(runtime.GOOS), runtime.GOOS, first)
	}
}

func TestFromGOOS(t *testing.T) {
	cases := map[string]Platform{
		"windows": Windows,
		"linux":   Posix,
		"darwin":  Posix,
		"freebsd": Posix,
	}
	for goos, want := range cases {
		if got := FromGOOS(goos); got != want {
			t.Fatalf("FromGOOS(%q) = %v, want %v", goos, got, want)
		}
	}
}

func TestExecutableName(t *testing.T) {
	if got := Windows.ExecutableName("ffmpeg"); got != "ffmpeg.exe" {
		t.Fatalf("unexpected windows name: %q", got)
	}
	if got := Posix.ExecutableName("ffmpeg"); got != "ffmpeg" {
		t.Fatalf("unexpected posix name: %q", got)
	}
}

func TestKey(t *testing.T) {
	want := runtime.GOOS + "-" + runtime.GOARCH
	if Key() != want {
		t.Fatalf("Key() = %q, want %q", Key(), want)
	}
	if Windows.String() != "windows" || Posix.String() != "posix" {
		t.Fatalf("unexpected family names: %s %s", Windows, Posix)
	}
}
