package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hopper/internal/config"
	"hopper/internal/logging"
)

// Level classifies a notification for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one queued message.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SinkOption customises Sink construction.
type SinkOption func(*Sink)

// WithClock overrides the time source (used in tests).
func WithClock(clock func() time.Time) SinkOption {
	return func(s *Sink) {
		s.clock = clock
	}
}

// WithPusher overrides the push channel.
func WithPusher(pusher Pusher) SinkOption {
	return func(s *Sink) {
		s.pusher = pusher
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) {
		s.logger = logging.NewComponentLogger(logger, "notify")
	}
}

// Sink queues notifications with timed expiry. The errors and workflow
// toggles suppress the corresponding messages entirely when disabled.
type Sink struct {
	ttl         time.Duration
	max         int
	pushTimeout time.Duration
	errors      bool
	workflow    bool
	clock       func() time.Time
	pusher      Pusher
	logger      *slog.Logger

	mu    sync.Mutex
	items []Notification
}

// NewSink builds a sink from configuration. The ntfy push channel is wired
// when a topic is configured.
func NewSink(cfg *config.Config, opts ...SinkOption) *Sink {
	sink := &Sink{
		ttl:         8 * time.Second,
		max:         32,
		pushTimeout: 10 * time.Second,
		errors:      true,
		workflow:    true,
		clock:       time.Now,
		logger:      logging.NewNop(),
	}
	if cfg != nil {
		sink.errors = cfg.Notifications.Errors
		sink.workflow = cfg.Notifications.Workflow
		if cfg.Notifications.TTLSeconds > 0 {
			sink.ttl = time.Duration(cfg.Notifications.TTLSeconds) * time.Second
		}
		if cfg.Notifications.MaxQueued > 0 {
			sink.max = cfg.Notifications.MaxQueued
		}
		if cfg.Notifications.RequestTimeout > 0 {
			sink.pushTimeout = time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		}
		sink.pusher = NewPusher(cfg)
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// Push queues a message. It never blocks on delivery and never fails.
// Messages whose category is disabled in configuration are dropped.
func (s *Sink) Push(level Level, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	if level == LevelError {
		if !s.errors {
			return
		}
	} else if !s.workflow {
		return
	}

	now := s.clock()
	item := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.items = append(s.items, item)
	if len(s.items) > s.max {
		s.items = s.items[len(s.items)-s.max:]
	}
	s.mu.Unlock()

	if s.pusher != nil {
		go s.forward(item)
	}
}

// Info queues an informational message.
func (s *Sink) Info(message string) { s.Push(LevelInfo, message) }

// Success queues a success message.
func (s *Sink) Success(message string) { s.Push(LevelSuccess, message) }

// Warning queues a warning message.
func (s *Sink) Warning(message string) { s.Push(LevelWarning, message) }

// Error queues an error message.
func (s *Sink) Error(message string) { s.Push(LevelError, message) }

// Active returns the messages that have not yet expired, oldest first.
func (s *Sink) Active() []Notification {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Dismiss removes one message by ID before its expiry.
func (s *Sink) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear drops every queued message.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *Sink) pruneLocked(now time.Time) {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ExpiresAt.After(now) {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

func (s *Sink) forward(item Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()
	if err := s.pusher.Push(ctx, item.Level, item.Message); err != nil {
		s.logger.Debug("push notification", logging.Error(err))
	}
}
