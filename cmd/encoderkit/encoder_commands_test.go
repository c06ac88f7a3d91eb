package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"encoderkit/internal/platform"
)

func TestResolvePrintsSystemEncoder(t *testing.T) {
	env := setupCLITestEnv(t, "")
	env.stubEncoder(t, stubBuildconf)

	out, _, err := runCLI(t, []string{"resolve"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.TrimSpace(out) != "ffmpeg" {
		t.Fatalf("expected bare command name, got %q", out)
	}
}

func TestResolveJSONReportsDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	env := setupCLITestEnv(t, sourcesTable(srv.URL))

	out, _, err := runCLI(t, []string{"resolve", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got.Source != "download_failed" || got.Path != filepath.Join(env.cacheDir, "ffmpeg") {
		t.Fatalf("unexpected resolution: %#v", got)
	}
	if !strings.Contains(got.DownloadError, "403") {
		t.Fatalf("expected HTTP status in download error, got %q", got.DownloadError)
	}
}

func TestDownloadThenStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
	t.Cleanup(srv.Close)
	env := setupCLITestEnv(t, sourcesTable(srv.URL))

	out, _, err := runCLI(t, []string{"download"}, env.configPath)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Encoder installed at "+filepath.Join(env.cacheDir, "ffmpeg"))

	out, _, err = runCLI(t, []string{"resolve"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(env.cacheDir, "ffmpeg") {
		t.Fatalf("expected managed path, got %q", out)
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[ok] "+filepath.Join(env.cacheDir, "ffmpeg"))
	requireContains(t, out, "checksum not pinned")
	requireContains(t, out, "DOWNLOAD HISTORY")
	requireContains(t, out, "success")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var got statusOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !got.Installed || got.LastInstall == nil || got.LastInstall.SourceURL != srv.URL {
		t.Fatalf("unexpected status: %#v", got)
	}
	if len(got.Attempts) != 1 || got.Attempts[0].Outcome != "success" {
		t.Fatalf("unexpected attempts: %#v", got.Attempts)
	}
}

func TestStatusWithoutEncoder(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[warn] not installed")
	requireContains(t, out, "never downloaded")
	requireContains(t, out, "none recorded")
}

func TestVersionAndBuildInfo(t *testing.T) {
	env := setupCLITestEnv(t, "")
	env.stubEncoder(t, stubBuildconf)

	out, _, err := runCLI(t, []string{"version"}, env.configPath)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "4.4.1" {
		t.Fatalf("unexpected version output: %q", out)
	}

	out, _, err = runCLI(t, []string{"buildinfo"}, env.configPath)
	if err != nil {
		t.Fatalf("buildinfo: %v", err)
	}
	requireContains(t, out, "--enable-libx265")
}

func TestVersionUnrecognised(t *testing.T) {
	env := setupCLITestEnv(t, "")
	env.stubEncoder(t, "not an encoder")

	if _, _, err := runCLI(t, []string{"version"}, env.configPath); err == nil {
		t.Fatal("expected error for unrecognised version output")
	}
}

func TestFeaturesTableAndJSON(t *testing.T) {
	env := setupCLITestEnv(t, "")
	env.stubEncoder(t, stubBuildconf)

	out, _, err := runCLI(t, []string{"features"}, env.configPath)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	requireContains(t, out, "enable-gpl")
	requireContains(t, out, "enable-libvpx")

	out, _, err = runCLI(t, []string{"features", "libx265", "libvpx", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("features --json: %v", err)
	}
	var got []featureOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	want := []featureOutput{{Feature: "enable-libx265", Present: true}, {Feature: "enable-libvpx", Present: false}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected features: %#v", got)
	}
}

func TestFeaturesRejectsUnknownName(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, []string{"features", "libaom"}, env.configPath); err == nil {
		t.Fatal("expected unknown feature error")
	}
}

func TestFeaturesRemoteWithoutEncoder(t *testing.T) {
	env := setupCLITestEnv(t, "")
	cfgWithRemote := strings.Replace(readFile(t, env.configPath), "[encoder]\n", "[encoder]\nremote = true\n", 1)
	writeFile(t, env.configPath, cfgWithRemote)

	out, _, err := runCLI(t, []string{"features", "gpl", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	requireContains(t, out, `"present": true`)
}

// sourcesTable points both the running architecture and the posix family at url.
func sourcesTable(url string) string {
	return fmt.Sprintf("\n[encoder.sources]\n%q = %q\nposix = %q\n", platform.Key(), url, url)
}
