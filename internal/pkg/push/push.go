package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ml-express/courier-backend-go/internal/config"
)

// Client sends push notifications to couriers through the platform's push
// gateway. Delivery is best-effort: callers log failures and move on.
type Client interface {
	SendCourierNotification(ctx context.Context, courierID, title, body string) error
}

type httpClient struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

// NewClient returns a gateway-backed client, or a noop client when no gateway
// is configured (local development, tests).
func NewClient(cfg config.PushConfig) Client {
	if cfg.GatewayURL == "" {
		return noopClient{}
	}
	return &httpClient{
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type notificationPayload struct {
	CourierID string `json:"courier_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

func (c *httpClient) SendCourierNotification(ctx context.Context, courierID, title, body string) error {
	payload, err := json.Marshal(notificationPayload{
		CourierID: courierID,
		Title:     title,
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/v1/notifications", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	return nil
}

type noopClient struct{}

func (noopClient) SendCourierNotification(ctx context.Context, courierID, title, body string) error {
	return nil
}
