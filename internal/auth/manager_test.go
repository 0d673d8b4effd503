package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hopper/internal/api"
)

func testToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("encode header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("encode claims: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

func newManager(t *testing.T, server *httptest.Server, opts ...ManagerOption) (*Manager, *api.Client) {
	t.Helper()
	client, err := api.New(server.URL, api.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	mgr, err := NewManager(client, t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	client.SetTokenSource(mgr)
	return mgr, client
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func TestLoginStoresTokenAndUserTogether(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","user":{"username":"alice","role":"admin","session_id":"sess-9"}}`))
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	user, err := mgr.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if !mgr.Authenticated() || mgr.Token() != "tok-1" {
		t.Fatal("expected authenticated state after login")
	}
	if !mgr.IsAdmin() {
		t.Fatal("expected admin role")
	}
}

func TestLoginFailureClearsIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad password"}`))
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	if _, err := mgr.Login(context.Background(), "alice", "nope"); err == nil {
		t.Fatal("expected login failure")
	}
	if mgr.Authenticated() || mgr.CurrentUser() != nil {
		t.Fatal("identity must be fully cleared after failed login")
	}
}

func TestLogoutAlwaysClearsLocalState(t *testing.T) {
	var upstreamCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/logout", "/ai/clear-memory/sess-9":
			upstreamCalls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		case "/auth/refresh":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	seedIdentity(t, mgr, "tok-1", &api.User{Username: "alice", SessionID: "sess-9"})

	mgr.Logout(context.Background())

	if mgr.Authenticated() || mgr.CurrentUser() != nil {
		t.Fatal("logout must clear local state even when upstream calls fail")
	}
	if upstreamCalls.Load() != 2 {
		t.Fatalf("expected both upstream calls to be attempted, got %d", upstreamCalls.Load())
	}
}

func TestRefreshUnauthorizedClearsSilently(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	mgr, _ := newManager(t, server, WithNotifier(notifier))
	seedIdentity(t, mgr, "tok-old", &api.User{Username: "alice"})

	ok, err := mgr.Refresh(context.Background(), "tok-old")
	if ok || err != nil {
		t.Fatalf("expected silent (false, nil), got (%v, %v)", ok, err)
	}
	if mgr.Authenticated() {
		t.Fatal("identity should be cleared")
	}
	if notifier.count() != 0 {
		t.Fatal("the expected no-session case must not notify")
	}
}

func TestRefreshServerErrorClearsAndNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"backend down"}`))
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	mgr, _ := newManager(t, server, WithNotifier(notifier))
	seedIdentity(t, mgr, "tok-old", &api.User{Username: "alice"})

	ok, err := mgr.Refresh(context.Background(), "tok-old")
	if ok || err == nil {
		t.Fatalf("expected surfaced error, got (%v, %v)", ok, err)
	}
	if mgr.Authenticated() {
		t.Fatal("identity should be cleared")
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
}

func TestRefreshSharesResultWithStaleCallers(t *testing.T) {
	var refreshCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-new"}`))
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	seedIdentity(t, mgr, "tok-old", nil)

	ok, err := mgr.Refresh(context.Background(), "tok-old")
	if !ok || err != nil {
		t.Fatalf("first refresh: (%v, %v)", ok, err)
	}

	// Second caller still holds the stale token; it must reuse the result.
	ok, err = mgr.Refresh(context.Background(), "tok-old")
	if !ok || err != nil {
		t.Fatalf("second refresh: (%v, %v)", ok, err)
	}
	if refreshCalls.Load() != 1 {
		t.Fatalf("expected a single upstream refresh, got %d", refreshCalls.Load())
	}
	if mgr.Token() != "tok-new" {
		t.Fatalf("unexpected token %q", mgr.Token())
	}
}

func TestFetchCurrentUserNoOpWhenLoggedOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected")
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	user, err := mgr.FetchCurrentUser(context.Background())
	if user != nil || err != nil {
		t.Fatalf("expected no-op, got (%+v, %v)", user, err)
	}
}

func TestFetchCurrentUserUnauthorizedTearsDownLocally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Both /auth/me and the gate's follow-up refresh are rejected.
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	seedIdentity(t, mgr, "tok-old", &api.User{Username: "alice"})

	user, err := mgr.FetchCurrentUser(context.Background())
	if user != nil || err != nil {
		t.Fatalf("expected silent teardown, got (%+v, %v)", user, err)
	}
	if mgr.Authenticated() {
		t.Fatal("identity should be cleared after unauthorized fetch")
	}
}

func TestFetchCurrentUserSwallowsOtherFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mgr, _ := newManager(t, server)
	seedIdentity(t, mgr, "tok-1", &api.User{Username: "alice"})

	user, err := mgr.FetchCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("transient failure must be swallowed, got %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("user record must be left unchanged, got %+v", user)
	}
	if !mgr.Authenticated() {
		t.Fatal("identity must survive transient failures")
	}
}

func TestStatePersistsAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStateStore(dir)
	if err := store.Save(State{AccessToken: "tok-1", User: &api.User{Username: "alice"}, ClientIdentifier: "cid"}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	client, err := api.New("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	mgr, err := NewManager(client, dir)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if mgr.Token() != "tok-1" {
		t.Fatalf("expected restored token, got %q", mgr.Token())
	}
	if user := mgr.CurrentUser(); user == nil || user.Username != "alice" {
		t.Fatalf("expected restored user, got %+v", user)
	}
}

func TestTokenClaimsHelpers(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testToken(t, map[string]any{"exp": exp.Unix(), "role": "admin"})

	got, ok := TokenExpiry(token)
	if !ok || !got.Equal(exp) {
		t.Fatalf("TokenExpiry = (%v, %v), want (%v, true)", got, ok, exp)
	}
	if TokenRole(token) != "admin" {
		t.Fatalf("unexpected role %q", TokenRole(token))
	}
	if _, ok := TokenExpiry("not-a-jwt"); ok {
		t.Fatal("malformed token must not report expiry")
	}
}

// seedIdentity installs an identity directly, bypassing the network.
func seedIdentity(t *testing.T, mgr *Manager, token string, user *api.User) {
	t.Helper()
	mgr.stateMu.Lock()
	mgr.state.AccessToken = token
	mgr.state.User = user
	mgr.stateMu.Unlock()
}
