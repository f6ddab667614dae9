package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mangarchive/internal/config"
)

const userAgent = "mangarchive/0.1.0"

// Service defines the notification surface exposed to the archiver and CLI.
type Service interface {
	NotifyRunStarted(ctx context.Context, title, language string, chapters int) error
	NotifyChapterCompleted(ctx context.Context, title, chapter string, pages int) error
	NotifyRunCompleted(ctx context.Context, title string, completed, skipped int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewNoop returns a Service that discards every notification.
func NewNoop() Service { return noopService{} }

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, title, language string, chapters int) error {
	return n.send(ctx, payload{
		title:   "mangarchive - Run Started",
		message: fmt.Sprintf("📚 Archiving %s (%s): %d chapters selected", strings.TrimSpace(title), strings.TrimSpace(language), chapters),
		tags:    []string{"mangarchive", "run", "started"},
	})
}

func (n *ntfyService) NotifyChapterCompleted(ctx context.Context, title, chapter string, pages int) error {
	return n.send(ctx, payload{
		title:    "mangarchive - Chapter Ready",
		message:  fmt.Sprintf("📖 %s chapter %s ready (%d pages)", strings.TrimSpace(title), strings.TrimSpace(chapter), pages),
		tags:     []string{"mangarchive", "chapter", "completed"},
		priority: "low",
	})
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, title string, completed, skipped int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return n.send(ctx, payload{
		title:   "mangarchive - Run Complete",
		message: fmt.Sprintf("✅ %s: %d chapters archived, %d skipped in %s", strings.TrimSpace(title), completed, skipped, duration),
		tags:    []string{"mangarchive", "run", "completed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "mangarchive - Error",
		message:  builder.String(),
		tags:     []string{"mangarchive", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "mangarchive - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"mangarchive", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
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

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, string, int) error {
	return nil
}

func (noopService) NotifyChapterCompleted(context.Context, string, string, int) error {
	return nil
}

func (noopService) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}

func (noopService) NotifyError(context.Context, error, string) error {
	return nil
}

func (noopService) TestNotification(context.Context) error {
	return nil
}
