// Webhook 채널 어댑터 - 렌더링된 body를 HTTP POST로 전송

package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bizradar/backend/internal/model"
	tmpl "github.com/bizradar/backend/internal/template"
)

// WebhookChannel 구조체 정의
type WebhookChannel struct {
	httpClient *http.Client
	body       string // 템플릿 (비어 있으면 기본 JSON)
}

func NewWebhookChannel(body string) *WebhookChannel {
	return &WebhookChannel{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		body: body,
	}
}

func (w *WebhookChannel) Name() string { return "webhook" }

// Send - destination은 webhook URL
func (w *WebhookChannel) Send(ctx context.Context, alert *model.Alert, destination string) error {
	if destination == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	rendered := tmpl.RenderAlert(w.body, alert)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination, bytes.NewBufferString(rendered))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
