package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipflow/internal/config"
)

const userAgent = "Clipflow/0.1.0"

// Service defines the notification surface exposed to the sweeper and CLI.
type Service interface {
	NotifyClaimExpired(ctx context.Context, itemTitle, worker, stage string) error
	NotifyOverdue(ctx context.Context, itemTitle, stage string, late time.Duration) error
	NotifyReassigned(ctx context.Context, itemTitle, fromWorker, toWorker string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
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
		enabled:  cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  config.Notifications
}

func (n *ntfyService) NotifyClaimExpired(ctx context.Context, itemTitle, worker, stage string) error {
	if !n.enabled.ClaimExpired {
		return nil
	}
	itemTitle = strings.TrimSpace(itemTitle)
	worker = strings.TrimSpace(worker)
	data := payload{
		title:   "Clipflow - Claim Expired",
		message: fmt.Sprintf("Claim expired: %s (held by %s, stage %s). Item is back in the queue.", itemTitle, worker, stage),
		tags:    []string{"clipflow", "claim", "expired"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyOverdue(ctx context.Context, itemTitle, stage string, late time.Duration) error {
	if !n.enabled.Overdue {
		return nil
	}
	itemTitle = strings.TrimSpace(itemTitle)
	late = late.Round(time.Minute)
	if late < 0 {
		late = 0
	}
	data := payload{
		title:    "Clipflow - Overdue",
		message:  fmt.Sprintf("Overdue: %s has been in %s for %s past its deadline", itemTitle, stage, late),
		tags:     []string{"clipflow", "sla", "overdue"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReassigned(ctx context.Context, itemTitle, fromWorker, toWorker string) error {
	if !n.enabled.Reassigned {
		return nil
	}
	itemTitle = strings.TrimSpace(itemTitle)
	fromWorker = strings.TrimSpace(fromWorker)
	if fromWorker == "" {
		fromWorker = "unassigned"
	}
	data := payload{
		title:   "Clipflow - Reassigned",
		message: fmt.Sprintf("Reassigned: %s moved from %s to %s", itemTitle, fromWorker, strings.TrimSpace(toWorker)),
		tags:    []string{"clipflow", "claim", "reassigned"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Clipflow - Test",
		message:  "Notification system test",
		tags:     []string{"clipflow", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyClaimExpired(context.Context, string, string, string) error   { return nil }
func (noopService) NotifyOverdue(context.Context, string, string, time.Duration) error { return nil }
func (noopService) NotifyReassigned(context.Context, string, string, string) error     { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
