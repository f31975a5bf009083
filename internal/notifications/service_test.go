package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyClaimExpired(context.Background(), "Example", "alice", "not_recorded"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "claim expired",
			send: func(svc notifications.Service) error {
				return svc.NotifyClaimExpired(context.Background(), "Morning Clip", "alice", "not_recorded")
			},
			expectTitle:   "Clipflow - Claim Expired",
			expectMessage: "Claim expired: Morning Clip (held by alice, stage not_recorded). Item is back in the queue.",
			expectTags:    "clipflow,claim,expired",
		},
		{
			name: "overdue",
			send: func(svc notifications.Service) error {
				return svc.NotifyOverdue(context.Background(), "Morning Clip", "recorded", 90*time.Minute)
			},
			expectTitle:    "Clipflow - Overdue",
			expectMessage:  "Overdue: Morning Clip has been in recorded for 1h30m0s past its deadline",
			expectTags:     "clipflow,sla,overdue",
			expectPriority: "high",
		},
		{
			name: "reassigned",
			send: func(svc notifications.Service) error {
				return svc.NotifyReassigned(context.Background(), "Morning Clip", "alice", "bob")
			},
			expectTitle:   "Clipflow - Reassigned",
			expectMessage: "Reassigned: Morning Clip moved from alice to bob",
			expectTags:    "clipflow,claim,reassigned",
		},
		{
			name: "test notification",
			send: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Clipflow - Test",
			expectMessage:  "Notification system test",
			expectTags:     "clipflow,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.ClaimExpired = true
			cfg.Notifications.Overdue = true
			cfg.Notifications.Reassigned = true

			svc := notifications.NewService(&cfg)
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsDisabledEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.ClaimExpired = false
	cfg.Notifications.Overdue = false
	cfg.Notifications.Reassigned = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyClaimExpired(ctx, "Example", "alice", "not_recorded"); err != nil {
		t.Fatalf("expected nil for disabled claim_expired, got %v", err)
	}
	if err := svc.NotifyOverdue(ctx, "Example", "recorded", time.Hour); err != nil {
		t.Fatalf("expected nil for disabled overdue, got %v", err)
	}
	if err := svc.NotifyReassigned(ctx, "Example", "alice", "bob"); err != nil {
		t.Fatalf("expected nil for disabled reassigned, got %v", err)
	}
}
