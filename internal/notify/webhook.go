package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fundledger/internal/ledger/application"
)

// WebhookNotifier posts transition and accrual notifications to a webhook.
// Callers treat delivery as fire-and-forget.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyTransition sends a request transition notification.
func (n *WebhookNotifier) NotifyTransition(ctx context.Context, event application.TransitionEvent) error {
	return n.post(ctx, formatTransition(event))
}

// NotifyAccrual sends an accrual run summary notification.
func (n *WebhookNotifier) NotifyAccrual(ctx context.Context, event application.AccrualEvent) error {
	return n.post(ctx, formatAccrual(event))
}

func (n *WebhookNotifier) post(ctx context.Context, content string) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: content},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

func formatTransition(event application.TransitionEvent) string {
	var b strings.Builder
	b.WriteString("[Ledger Transition]\n")
	fmt.Fprintf(&b, "Kind: %s\n", event.Kind)
	if event.Reference != "" {
		fmt.Fprintf(&b, "Reference: %s\n", event.Reference)
	}
	fmt.Fprintf(&b, "Member: %s\n", event.MemberID)
	fmt.Fprintf(&b, "Amount: %s\n", event.Amount)
	if event.From != "" {
		fmt.Fprintf(&b, "Status: %s -> %s\n", event.From, event.To)
	} else {
		fmt.Fprintf(&b, "Status: %s\n", event.To)
	}
	if event.Actor != "" {
		fmt.Fprintf(&b, "Actor: %s\n", event.Actor)
	}
	return strings.TrimSpace(b.String())
}

func formatAccrual(event application.AccrualEvent) string {
	var b strings.Builder
	b.WriteString("[Monthly Accrual]\n")
	fmt.Fprintf(&b, "Run: %s\n", event.Reference)
	fmt.Fprintf(&b, "Month: %s\n", event.Month)
	fmt.Fprintf(&b, "Processed: %d Skipped: %d Failed: %d\n", event.Processed, event.Skipped, event.Failed)
	fmt.Fprintf(&b, "Interest: %s\n", event.TotalInterest)
	return strings.TrimSpace(b.String())
}
