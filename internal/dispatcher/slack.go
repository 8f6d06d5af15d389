// Slack 채널 어댑터 - Alert를 attachment 포맷으로 전송

package dispatcher

import (
	"context"
	"fmt"

	"github.com/bizradar/backend/internal/client"
	"github.com/bizradar/backend/internal/model"
)

// slackSender - Slack 클라이언트 인터페이스 (어댑터 전용)
type slackSender interface {
	PostMessage(ctx context.Context, msg client.SlackMessage) error
}

// SlackChannel 구조체 정의
type SlackChannel struct {
	sender slackSender
}

func NewSlackChannel(sender slackSender) *SlackChannel {
	return &SlackChannel{sender: sender}
}

func (s *SlackChannel) Name() string { return "slack" }

// Send - destination은 Slack 채널 ID
func (s *SlackChannel) Send(ctx context.Context, alert *model.Alert, destination string) error {
	if destination == "" {
		return fmt.Errorf("slack channel ID not configured")
	}

	fields := make([]client.SlackField, 0, len(alert.Changes))
	for _, c := range alert.Changes {
		fields = append(fields, client.SlackField{
			Title: string(c.Dimension),
			Value: c.Description,
			Short: false,
		})
	}

	msg := client.SlackMessage{
		Channel: destination,
		Attachments: []client.SlackAttachment{
			{
				Color: confidenceColor(alert.AggregateConfidence),
				Title: fmt.Sprintf("📊 %s: %d change(s) detected", alert.EntityID, len(alert.Changes)),
				Text: fmt.Sprintf("Aggregate confidence: %.0f%%",
					alert.AggregateConfidence*100),
				Fields: fields,
				Footer: "bizradar monitoring",
				Ts:     alert.CreatedAt.Unix(),
			},
		},
	}
	return s.sender.PostMessage(ctx, msg)
}

// confidenceColor - 신뢰도 구간별 attachment 색상
//   - 0.8 이상: #dc3545 (빨강)
//   - 0.5 이상: #ffc107 (노랑)
//   - 그 외: #36a64f (초록)
func confidenceColor(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "#dc3545"
	case confidence >= 0.5:
		return "#ffc107"
	default:
		return "#36a64f"
	}
}
