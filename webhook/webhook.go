package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/rankcheck/models"
)

// Event types.
const (
	EventLookupSucceeded = "lookup.succeeded"
	EventLookupFailed    = "lookup.failed"
)

// SignatureHeader carries "sha256=<hex>" when a secret is configured.
const SignatureHeader = "X-Rankcheck-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id"`
	Sequence  uint64             `json:"sequence"`
	Timestamp int64              `json:"timestamp"`
	Data      models.LookupState `json:"data"`
}

// NewLookupEvent builds the event for a completed lookup state.
func NewLookupEvent(sessionID string, st models.LookupState) *Event {
	typ := EventLookupSucceeded
	if st.Status == models.StatusFailed {
		typ = EventLookupFailed
	}
	return &Event{
		Type:      typ,
		SessionID: sessionID,
		Sequence:  st.Sequence,
		Timestamp: st.UpdatedAt.Unix(),
		Data:      st,
	}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sender delivers events over HTTP.
type Sender struct {
	client *http.Client
	secret string
}

// NewSender creates a Sender. The body is signed when secret is non-empty.
func NewSender(secret string, timeout time.Duration) *Sender {
	return &Sender{client: &http.Client{Timeout: timeout}, secret: secret}
}

// Deliver sends a webhook event synchronously.
func (s *Sender) Deliver(ctx context.Context, url string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Rankcheck-Webhook/1.0")

	if s.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(s.secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends a webhook event in the background. Delivery is attempted
// once; failures are logged.
func (s *Sender) DeliverAsync(url string, event *Event) {
	go func() {
		if err := s.Deliver(context.Background(), url, event); err != nil {
			slog.Warn("webhook delivery failed",
				"url", url,
				"event", event.Type,
				"session_id", event.SessionID,
				"sequence", event.Sequence,
				"error", err,
			)
			return
		}
		slog.Info("webhook delivered",
			"url", url,
			"event", event.Type,
			"session_id", event.SessionID,
			"sequence", event.Sequence,
		)
	}()
}
