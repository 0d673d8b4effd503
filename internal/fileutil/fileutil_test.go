package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.csv", "report.csv"},
		{"  spaced.csv ", "spaced.csv"},
		{"../../etc/passwd", "passwd"},
		{"dir/nested.csv", "nested.csv"},
		{"bad\x00name.csv", "bad_name.csv"},
		{"..", "download"},
		{"", "download"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.zip")

	got, err := UniquePath(path)
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if got != path {
		t.Fatalf("fresh path = %q, want %q", got, path)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = UniquePath(path)
	if err != nil {
		t.Fatalf("UniquePath taken: %v", err)
	}
	want := filepath.Join(dir, "output (1).zip")
	if got != want {
		t.Fatalf("taken path = %q, want %q", got, want)
	}

	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = UniquePath(path)
	if err != nil {
		t.Fatalf("UniquePath twice taken: %v", err)
	}
	if want := filepath.Join(dir, "output (2).zip"); got != want {
		t.Fatalf("second variant = %q, want %q", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s (err %v)", dir, err)
	}
}
