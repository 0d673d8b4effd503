package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hopper/internal/config"
)

const userAgent = "hopper/0.1.0"

// Pusher forwards a notification to an external channel.
type Pusher interface {
	Push(ctx context.Context, level Level, message string) error
}

// NewPusher builds an ntfy-backed pusher when a topic is configured,
// otherwise nil (no push channel).
func NewPusher(cfg *config.Config) Pusher {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return nil
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyPusher{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type ntfyPusher struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyPusher) Push(ctx context.Context, level Level, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "Hopper - "+titleFor(level))
	req.Header.Set("Tags", "hopper,"+string(level))
	if level == LevelError {
		req.Header.Set("Priority", "high")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func titleFor(level Level) string {
	switch level {
	case LevelSuccess:
		return "Done"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		return "Update"
	}
}
