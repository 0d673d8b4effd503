package main

import (
	"os"
	"path/filepath"
	"testing"

	"hopper/internal/testsupport"
)

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	out := captureOutput(t, cmd, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestWorkflowEndToEnd(t *testing.T) {
	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(backend.URL()))
	configPath := writeTestConfig(t, cfg)

	archive := filepath.Join(t.TempDir(), "export.zip")
	if err := os.WriteFile(archive, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	out, err := runCLI(t, configPath, "login", "-u", "test", "-p", "secret")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	requireContains(t, out, "Logged in as test")

	out, err = runCLI(t, configPath, "scan", archive)
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	requireContains(t, out, testsupport.BackendSession)
	requireContains(t, out, "1 groups, 2 files")
	if backend.ScanCalls() != 1 {
		t.Fatalf("scan calls = %d, want 1", backend.ScanCalls())
	}

	out, err = runCLI(t, configPath, "groups", "list")
	if err != nil {
		t.Fatalf("groups list: %v\n%s", err, out)
	}
	requireContains(t, out, "A")

	out, err = runCLI(t, configPath, "convert")
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, out)
	}
	requireContains(t, out, "Converted 2 files")
	if backend.ConvertCalls() != 1 {
		t.Fatalf("convert calls = %d, want 1", backend.ConvertCalls())
	}

	out, err = runCLI(t, configPath, "files", "list")
	if err != nil {
		t.Fatalf("files list: %v\n%s", err, out)
	}
	requireContains(t, out, "one.csv")
	requireContains(t, out, "two.csv")

	out, err = runCLI(t, configPath, "preview", "one.csv")
	if err != nil {
		t.Fatalf("preview: %v\n%s", err, out)
	}
	requireContains(t, out, "alpha")

	out, err = runCLI(t, configPath, "download", "all")
	if err != nil {
		t.Fatalf("download all: %v\n%s", err, out)
	}
	saved := filepath.Join(cfg.Paths.DownloadDir, "converted_output.zip")
	if data, err := os.ReadFile(saved); err != nil || string(data) != "fake-archive-bytes" {
		t.Fatalf("saved download = %q (err %v)", data, err)
	}

	out, err = runCLI(t, configPath, "download", "group", "A")
	if err != nil {
		t.Fatalf("download group: %v\n%s", err, out)
	}
	requireContains(t, out, "A_group.zip")

	out, err = runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "Stage:     Converted")

	out, err = runCLI(t, configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v\n%s", err, out)
	}
	requireContains(t, out, "export.zip")

	out, err = runCLI(t, configPath, "cleanup")
	if err != nil {
		t.Fatalf("cleanup: %v\n%s", err, out)
	}
	requireContains(t, out, "Session cleaned up")
	if backend.CleanupCalls() != 1 {
		t.Fatalf("cleanup calls = %d, want 1", backend.CleanupCalls())
	}

	out, err = runCLI(t, configPath, "logout")
	if err != nil {
		t.Fatalf("logout: %v\n%s", err, out)
	}
	requireContains(t, out, "Logged out")
	if !backend.LoggedOut() {
		t.Fatal("expected backend logout call")
	}
}

func TestScanRequiresLogin(t *testing.T) {
	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(backend.URL()))
	configPath := writeTestConfig(t, cfg)

	archive := filepath.Join(t.TempDir(), "export.zip")
	if err := os.WriteFile(archive, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	if _, err := runCLI(t, configPath, "scan", archive); err == nil {
		t.Fatal("expected scan to fail without a login")
	}
	if backend.ScanCalls() != 0 {
		t.Fatalf("scan calls = %d, want 0 (fail fast without token)", backend.ScanCalls())
	}
}

func TestRunCommand(t *testing.T) {
	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(backend.URL()))
	configPath := writeTestConfig(t, cfg)

	archive := filepath.Join(t.TempDir(), "export.zip")
	if err := os.WriteFile(archive, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	if out, err := runCLI(t, configPath, "login", "-u", "test", "-p", "secret"); err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}

	out, err := runCLI(t, configPath, "run", archive)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Scanned export.zip: 1 groups")
	requireContains(t, out, "Converted 2 files")
	requireContains(t, out, "Session cleaned up")

	// The one-shot workflow ends fully torn down.
	out, err = runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "Stage:     Idle")
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.in); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStageLabel(t *testing.T) {
	if got := stageLabel("converted"); got != "Converted" {
		t.Errorf("stageLabel = %q, want Converted", got)
	}
}
