package notify_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hopper/internal/config"
	"hopper/internal/notify"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestSink(t *testing.T, clock *fakeClock) *notify.Sink {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.TTLSeconds = 5
	cfg.Notifications.MaxQueued = 3
	return notify.NewSink(&cfg, notify.WithClock(clock.Now))
}

func TestSinkExpiresMessages(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	sink := newTestSink(t, clock)

	sink.Error("scan failed")
	if got := sink.Active(); len(got) != 1 || got[0].Message != "scan failed" {
		t.Fatalf("unexpected active set %v", got)
	}

	clock.Advance(6 * time.Second)
	if got := sink.Active(); len(got) != 0 {
		t.Fatalf("expected expiry after TTL, got %v", got)
	}
}

func TestSinkCapsQueueDepth(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	sink := newTestSink(t, clock)

	sink.Info("one")
	sink.Info("two")
	sink.Info("three")
	sink.Info("four")

	got := sink.Active()
	if len(got) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(got))
	}
	if got[0].Message != "two" || got[2].Message != "four" {
		t.Fatalf("expected oldest dropped, got %v", got)
	}
}

func TestSinkDismissRemovesOneMessage(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	sink := newTestSink(t, clock)

	sink.Info("keep")
	sink.Warning("drop")
	active := sink.Active()
	if len(active) != 2 {
		t.Fatalf("expected two messages, got %v", active)
	}

	sink.Dismiss(active[1].ID)
	remaining := sink.Active()
	if len(remaining) != 1 || remaining[0].Message != "keep" {
		t.Fatalf("unexpected remainder %v", remaining)
	}
}

func TestSinkHonorsCategoryToggles(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}

	cfg := config.Default()
	cfg.Notifications.Errors = false
	sink := notify.NewSink(&cfg, notify.WithClock(clock.Now))
	sink.Error("scan failed")
	sink.Success("scan complete")
	if got := sink.Active(); len(got) != 1 || got[0].Message != "scan complete" {
		t.Fatalf("expected error suppressed, got %v", got)
	}

	cfg = config.Default()
	cfg.Notifications.Workflow = false
	sink = notify.NewSink(&cfg, notify.WithClock(clock.Now))
	sink.Success("scan complete")
	sink.Info("progress")
	sink.Error("scan failed")
	if got := sink.Active(); len(got) != 1 || got[0].Message != "scan failed" {
		t.Fatalf("expected workflow suppressed, got %v", got)
	}
}

func TestSinkIgnoresBlankMessages(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	sink := newTestSink(t, clock)

	sink.Error("   ")
	if got := sink.Active(); len(got) != 0 {
		t.Fatalf("blank messages must be ignored, got %v", got)
	}
}

func TestNtfyPusherSendsHeaders(t *testing.T) {
	received := make(chan *http.Request, 1)
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		received <- r.Clone(r.Context())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	sink := notify.NewSink(&cfg)
	sink.Error("conversion failed")

	select {
	case req := <-received:
		if req.Header.Get("Title") != "Hopper - Error" {
			t.Fatalf("unexpected title %q", req.Header.Get("Title"))
		}
		if req.Header.Get("Priority") != "high" {
			t.Fatalf("expected high priority for errors, got %q", req.Header.Get("Priority"))
		}
		if body != "conversion failed" {
			t.Fatalf("unexpected body %q", body)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("push was never delivered")
	}
}
