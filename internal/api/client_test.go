package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type staticTokens struct {
	token    atomic.Value
	refreshs atomic.Int64
	next     string
	allow    bool
}

func newStaticTokens(token string) *staticTokens {
	ts := &staticTokens{}
	ts.token.Store(token)
	return ts
}

func (ts *staticTokens) Token() string {
	value, _ := ts.token.Load().(string)
	return value
}

func (ts *staticTokens) Refresh(_ context.Context, _ string) (bool, error) {
	ts.refreshs.Add(1)
	if !ts.allow {
		return false, nil
	}
	ts.token.Store(ts.next)
	return true, nil
}

func newTestClient(t *testing.T, server *httptest.Server, tokens TokenSource) *Client {
	t.Helper()
	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if tokens != nil {
		client.SetTokenSource(tokens)
	}
	return client
}

func TestAuthenticatedCallFailsFastWithoutToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(t, server, newStaticTokens(""))
	if _, err := client.ListFiles(context.Background(), "s1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if called {
		t.Fatal("no network call should be issued without a token")
	}
}

func TestGateRefreshesOnceOn401(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"groups":[],"files":[],"total_files":0}`))
	}))
	defer server.Close()

	tokens := newStaticTokens("stale")
	tokens.allow = true
	tokens.next = "fresh"

	client := newTestClient(t, server, tokens)
	listing, err := client.ListFiles(context.Background(), "s1")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if listing.TotalFiles != 0 {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if got := tokens.refreshs.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected one retry after refresh, got %d attempts", got)
	}
}

func TestGateGivesUpWhenRefreshDenied(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := newStaticTokens("stale")
	client := newTestClient(t, server, tokens)

	if _, err := client.ListFiles(context.Background(), "s1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected no retry when refresh fails, got %d attempts", got)
	}
}

func TestLoginMapsRejectionToInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad password"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	_, err := client.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := ErrorMessage(err); got != "invalid credentials: bad password" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestStatusErrorDetailExtraction(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"detail field", `{"detail":"scan failed: corrupt archive"}`, "scan failed: corrupt archive"},
		{"message field", `{"message":"nope"}`, "nope"},
		{"raw text", "plain failure", "plain failure"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractDetail([]byte(tc.body)); got != tc.detail {
				t.Fatalf("extractDetail(%q) = %q, want %q", tc.body, got, tc.detail)
			}
		})
	}
}

func TestScanUploadsMultipartArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "input.zip")
	if err := os.WriteFile(archive, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversion/scan" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "input.zip" {
			t.Fatalf("unexpected upload name %q", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_id":"s1","groups":[{"name":"A","file_count":3,"size":100}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, newStaticTokens("tok"))
	resp, err := client.Scan(context.Background(), archive)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if resp.SessionID != "s1" || len(resp.Groups) != 1 || resp.Groups[0].FileCount != 3 {
		t.Fatalf("unexpected scan response %+v", resp)
	}
}

func TestUploadOutlivesRequestTimeout(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "input.zip")
	if err := os.WriteFile(archive, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/conversion/scan":
			_, _ = w.Write([]byte(`{"session_id":"s1"}`))
		default:
			_, _ = w.Write([]byte(`{"username":"test"}`))
		}
	}))
	defer server.Close()

	client, err := New(server.URL,
		WithHTTPClient(server.Client()),
		WithTimeouts(50*time.Millisecond, 2*time.Second))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.SetTokenSource(newStaticTokens("tok"))

	if _, err := client.CurrentUser(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error for slow request, got %v", err)
	}
	resp, err := client.Scan(context.Background(), archive)
	if err != nil {
		t.Fatalf("scan under upload timeout: %v", err)
	}
	if resp.SessionID != "s1" {
		t.Fatalf("unexpected scan response %+v", resp)
	}
}

func TestConvertSendsFormFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("session_id"); got != "s1" {
			t.Fatalf("unexpected session_id %q", got)
		}
		if got := r.FormValue("output_format"); got != "csv" {
			t.Fatalf("unexpected output_format %q", got)
		}
		if got := r.MultipartForm.Value["groups"]; len(got) != 2 || got[0] != "A" || got[1] != "B" {
			t.Fatalf("unexpected groups %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"stats":{"converted":5}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, newStaticTokens("tok"))
	resp, err := client.Convert(context.Background(), "s1", "csv", []string{"A", "B"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !resp.Success || resp.Stats.Converted != 5 {
		t.Fatalf("unexpected convert response %+v", resp)
	}
}

func TestPreviewFallsBackToRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("max_rows"); got != "100" {
			t.Fatalf("unexpected max_rows %q", got)
		}
		_, _ = w.Write([]byte("col1,col2\n1,2\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server, newStaticTokens("tok"))
	preview, err := client.Preview(context.Background(), "s1", "x.csv", 0)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview.Columns) != 0 || string(preview.Raw) != "col1,col2\n1,2\n" {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Filename != "x.csv" {
		t.Fatalf("unexpected filename %q", preview.Filename)
	}
}
