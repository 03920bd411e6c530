package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fundledger/internal/ledger/application"
)

func TestNotifyTransition(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.NotifyTransition(context.Background(), application.TransitionEvent{
		Kind:       "withdrawal",
		Reference:  "WDR-ABCD1234",
		MemberID:   "member-1",
		Actor:      "admin-1",
		Amount:     "600.00",
		From:       "pending",
		To:         "approved",
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if received.MsgType != "text" {
		t.Fatalf("msgtype = %q, want text", received.MsgType)
	}
	content := received.Text.Content
	for _, want := range []string{"[Ledger Transition]", "WDR-ABCD1234", "pending -> approved", "600.00"} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
}

func TestNotifyAccrual(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.NotifyAccrual(context.Background(), application.AccrualEvent{
		Reference:     "RUN-1234ABCD",
		Month:         "2024-03",
		Processed:     12,
		Skipped:       3,
		Failed:        1,
		TotalInterest: "640.00",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	content := received.Text.Content
	for _, want := range []string{"[Monthly Accrual]", "2024-03", "Processed: 12 Skipped: 3 Failed: 1", "640.00"} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
}

func TestNotifyNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	if err := notifier.NotifyAccrual(context.Background(), application.AccrualEvent{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
