package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

const maxResponseBytes = 1 << 16

// MailgunNotifier delivers notifications through the Mailgun messages API.
type MailgunNotifier struct {
	BaseURL        string
	Domain         string
	Sender         string
	APIKeyRef      domain.SecretRef
	Secrets        ports.SecretStore
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.Notifier = (*MailgunNotifier)(nil)

type mailgunResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (n *MailgunNotifier) Send(ctx context.Context, notification domain.Notification) error {
	if strings.TrimSpace(notification.Recipient) == "" {
		return errors.New("notification recipient is required")
	}
	if n.Domain == "" || n.Sender == "" {
		return errors.New("mailgun domain and sender are required")
	}
	if n.Secrets == nil {
		return errors.New("secret store is required")
	}

	apiKey, err := n.Secrets.Get(ctx, n.APIKeyRef)
	if err != nil {
		return fmt.Errorf("resolve mailgun api key: %w", err)
	}

	endpoint, err := url.JoinPath(strings.TrimRight(n.BaseURL, "/"), "v3", n.Domain, "messages")
	if err != nil {
		return fmt.Errorf("build mailgun url: %w", err)
	}

	form := url.Values{}
	form.Set("from", n.Sender)
	form.Set("to", notification.Recipient)
	form.Set("subject", notification.Subject)
	form.Set("text", notification.Body)

	requestCtx, cancel := n.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", apiKey)

	resp, err := n.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("send mailgun message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload mailgunResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if decodeErr == nil && payload.Message != "" {
			return fmt.Errorf("send mailgun message: status %d: %s", resp.StatusCode, payload.Message)
		}
		return fmt.Errorf("send mailgun message: status %d", resp.StatusCode)
	}
	return nil
}

func (n *MailgunNotifier) httpClient() *http.Client {
	if n.HTTPClient != nil {
		return n.HTTPClient
	}
	return http.DefaultClient
}

func (n *MailgunNotifier) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	timeout := n.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
