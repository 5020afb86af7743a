package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// WebhookDispatcher delivers notifications by POSTing them to a push
// gateway (ntfy-style). Transient failures are retried a few times with
// backoff; a gateway that stays down means the notification is dropped,
// matching the best-effort delivery contract.
type WebhookDispatcher struct {
	httpClient       *resty.Client
	enabled          bool
	maxRetryAttempts uint
}

// NewWebhookDispatcher creates a dispatcher for the given gateway URL.
// An empty URL yields an unsupported dispatcher. The token, when set, is
// sent as a bearer credential.
func NewWebhookDispatcher(gatewayURL, token string, enabled bool, retryAttempts uint) *WebhookDispatcher {
	var client *resty.Client
	if gatewayURL != "" {
		client = resty.New()
		client.SetBaseURL(gatewayURL)
		client.SetHeader("Content-Type", "application/json")
		if token != "" {
			client.SetHeader("Authorization", "Bearer "+token)
		}
	}

	if retryAttempts == 0 {
		retryAttempts = 3
	}
	return &WebhookDispatcher{
		httpClient:       client,
		enabled:          enabled,
		maxRetryAttempts: retryAttempts,
	}
}

// Close releases the underlying HTTP client.
func (d *WebhookDispatcher) Close() error {
	if d.httpClient == nil {
		return nil
	}
	return d.httpClient.Close()
}

func (d *WebhookDispatcher) IsSupported() bool {
	return d.httpClient != nil
}

func (d *WebhookDispatcher) IsEnabled() bool {
	return d.enabled
}

// RequestPermission reports the gateway configuration state; there is no
// interactive permission flow for a server-side gateway.
func (d *WebhookDispatcher) RequestPermission(_ context.Context) (Permission, error) {
	if !d.IsSupported() {
		return PermissionDefault, nil
	}
	if !d.enabled {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

type webhookMessage struct {
	Kind    string            `json:"kind"`
	FiredAt time.Time         `json:"fired_at"`
	Payload map[string]string `json:"payload,omitempty"`
}

// Show posts the notification to the gateway.
func (d *WebhookDispatcher) Show(ctx context.Context, n Notification) error {
	if !d.IsSupported() {
		return fmt.Errorf("webhook dispatcher is not configured")
	}

	message := webhookMessage{
		Kind:    string(n.Kind),
		FiredAt: n.FireAt,
		Payload: n.Payload,
	}

	if err := retry.Do(
		func() error {
			response, err := d.httpClient.R().
				SetContext(ctx).
				SetBody(message).
				Post("")
			if err != nil {
				return fmt.Errorf("httpClient.R().Post() > %w", err)
			}
			if response.IsError() {
				err := fmt.Errorf("gateway response error %d: %s", response.StatusCode(), response.String())
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(d.maxRetryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
	); err != nil {
		return fmt.Errorf("retry.Do() > %w", err)
	}
	return nil
}

// isRetryableError reports whether a gateway error is worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	if strings.Contains(message, "connection refused") || strings.Contains(message, "i/o timeout") {
		return true
	}
	// 5xx and rate limiting from the gateway.
	if strings.Contains(message, "response error 5") || strings.Contains(message, "response error 429") {
		return true
	}
	return false
}
