package capability_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"encoderkit/internal/capability"
)

const buildconf = `ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers
  configuration:
    --enable-gpl
    --enable-libx265`

type staticFinder struct {
	path string
	ok   bool
}

func (f staticFinder) FindExisting(context.Context) (string, bool) {
	return f.path, f.ok
}

type stubInfo struct {
	text  string
	err   error
	calls atomic.Int32
}

func (s *stubInfo) Get(context.Context, string) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

func TestHasFeature(t *testing.T) {
	info := &stubInfo{text: buildconf}
	d := capability.NewDetector(staticFinder{path: "ffmpeg", ok: true}, info, nil)
	ctx := context.Background()

	if !d.HasFeature(ctx, capability.FeatureGPL, false) {
		t.Fatal("expected gpl to be present")
	}
	if !d.HasFeature(ctx, capability.FeatureLibx265, false) {
		t.Fatal("expected libx265 to be present")
	}
	if d.HasFeature(ctx, capability.FeatureLibvpx, false) {
		t.Fatal("expected libvpx to be absent")
	}
}

func TestHasFeatureRemoteShortCircuits(t *testing.T) {
	info := &stubInfo{}
	d := capability.NewDetector(staticFinder{}, info, nil)

	if !d.HasFeature(context.Background(), capability.FeatureLibvpx, true) {
		t.Fatal("expected remote execution to report every feature")
	}
	if info.calls.Load() != 0 {
		t.Fatalf("expected no build info lookup, got %d", info.calls.Load())
	}
}

func TestHasFeatureWithoutBinary(t *testing.T) {
	info := &stubInfo{text: buildconf}
	d := capability.NewDetector(staticFinder{}, info, nil)

	if d.HasFeature(context.Background(), capability.FeatureGPL, false) {
		t.Fatal("expected false without a usable binary")
	}
	if info.calls.Load() != 0 {
		t.Fatalf("expected no build info lookup, got %d", info.calls.Load())
	}
}

func TestHasFeatureBuildInfoFailure(t *testing.T) {
	info := &stubInfo{err: errors.New("launch failed")}
	d := capability.NewDetector(staticFinder{path: "ffmpeg", ok: true}, info, nil)

	if d.HasFeature(context.Background(), capability.FeatureGPL, false) {
		t.Fatal("expected false when build info cannot be read")
	}
}

func TestDetectorVersion(t *testing.T) {
	d := capability.NewDetector(staticFinder{path: "ffmpeg", ok: true}, &stubInfo{text: buildconf}, nil)
	v, ok := d.Version(context.Background())
	if !ok || v != (capability.Version{Major: 6}) {
		t.Fatalf("unexpected version: %v %v", v, ok)
	}

	d = capability.NewDetector(staticFinder{path: "ffmpeg", ok: true}, &stubInfo{text: "garbage"}, nil)
	if _, ok := d.Version(context.Background()); ok {
		t.Fatal("expected absent version for unrecognised text")
	}
}
