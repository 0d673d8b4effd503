package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Backend is a fake conversion backend for CLI-level tests. It accepts the
// credentials test/secret, issues the bearer token test-token, and serves a
// canned single-group workflow.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	scanCalls    int
	convertCalls int
	cleanupCalls int
	loggedOut    bool
}

const (
	// BackendToken is the bearer token the fake backend issues and accepts.
	BackendToken = "test-token"
	// BackendSession is the session identity the fake backend assigns.
	BackendSession = "sess-test"
)

// NewBackend starts the fake backend and registers shutdown with t.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username != "test" || creds.Password != "secret" {
			writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeJSONBody(w, map[string]any{
			"access_token": BackendToken,
			"user": map[string]any{
				"id": "u1", "username": "test", "role": "admin", "session_id": "chat-1",
			},
		})
	})

	mux.HandleFunc("GET /auth/me", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, map[string]any{
			"id": "u1", "username": "test", "role": "admin", "session_id": "chat-1",
		})
	}))

	mux.HandleFunc("POST /auth/logout", b.authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.loggedOut = true
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusUnauthorized, "no refresh session")
	})

	mux.HandleFunc("POST /ai/clear-memory/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /conversion/scan", b.authed(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSONError(w, http.StatusBadRequest, "expected multipart upload")
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing file part")
			return
		}
		b.mu.Lock()
		b.scanCalls++
		b.mu.Unlock()
		writeJSONBody(w, map[string]any{
			"session_id": BackendSession,
			"groups":     []map[string]any{{"name": "A", "file_count": 2, "size": 2048}},
			"summary":    map[string]any{"total_groups": 1, "total_files": 2},
			"xml_count":  2,
		})
	}))

	mux.HandleFunc("POST /conversion/convert", b.authed(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSONError(w, http.StatusBadRequest, "expected multipart form")
			return
		}
		if r.FormValue("session_id") != BackendSession {
			writeJSONError(w, http.StatusNotFound, "unknown session")
			return
		}
		b.mu.Lock()
		b.convertCalls++
		b.mu.Unlock()
		writeJSONBody(w, map[string]any{
			"success": true,
			"stats":   map[string]any{"converted": 2, "skipped": 0, "errors": 0},
		})
	}))

	mux.HandleFunc("GET /conversion/files/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONBody(w, map[string]any{
			"groups": []map[string]any{{"name": "A", "file_count": 2, "size": 2048}},
			"files": []map[string]any{
				{"filename": "one.csv", "group": "A"},
				{"filename": "two.csv", "group": "A"},
			},
			"total_files": 2,
		})
	}))

	mux.HandleFunc("GET /conversion/preview/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/conversion/preview/"), "/")
		filename := parts[len(parts)-1]
		writeJSONBody(w, map[string]any{
			"filename":   filename,
			"columns":    []string{"id", "value"},
			"rows":       [][]string{{"1", "alpha"}, {"2", "beta"}},
			"total_rows": 2,
		})
	}))

	for _, path := range []string{
		"GET /conversion/download/",
		"GET /conversion/download-modified/",
		"GET /conversion/download-file/",
		"GET /conversion/download-group/",
	} {
		mux.HandleFunc(path, b.authed(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			fmt.Fprint(w, "fake-archive-bytes")
		}))
	}

	mux.HandleFunc("POST /conversion/cleanup/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.cleanupCalls++
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string { return b.Server.URL }

// ScanCalls returns how many scan uploads the backend accepted.
func (b *Backend) ScanCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scanCalls
}

// ConvertCalls returns how many conversions the backend accepted.
func (b *Backend) ConvertCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.convertCalls
}

// CleanupCalls returns how many cleanups the backend accepted.
func (b *Backend) CleanupCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleanupCalls
}

// LoggedOut reports whether the logout endpoint was hit.
func (b *Backend) LoggedOut() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggedOut
}

func (b *Backend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+BackendToken {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next(w, r)
	}
}

func writeJSONBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
