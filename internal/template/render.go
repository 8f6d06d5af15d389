// Package template provides webhook body template rendering.
//
// 지원하는 변수 형식:
//
//	{{alert.id}}, {{alert.entity}}, {{alert.confidence}},
//	{{alert.created_at}}, {{alert.change_count}}
//
//	{{changes.summary}} - 각 Change의 description을 줄바꿈으로 연결
package template

import (
	"fmt"
	"strings"

	"github.com/bizradar/backend/internal/model"
)

// DefaultBody - config에 body가 비어 있을 때 사용하는 기본 JSON 템플릿
const DefaultBody = `{"alert_id":"{{alert.id}}","entity":"{{alert.entity}}","confidence":{{alert.confidence}},"changes":"{{changes.summary}}"}`

// RenderAlert - 템플릿 변수를 Alert 값으로 치환
func RenderAlert(body string, alert *model.Alert) string {
	if body == "" {
		body = DefaultBody
	}

	summaries := make([]string, 0, len(alert.Changes))
	for _, c := range alert.Changes {
		summaries = append(summaries, c.Description)
	}

	replacer := strings.NewReplacer(
		"{{alert.id}}", alert.ID,
		"{{alert.entity}}", alert.EntityID,
		"{{alert.confidence}}", fmt.Sprintf("%.2f", alert.AggregateConfidence),
		"{{alert.created_at}}", alert.CreatedAt.Format("2006-01-02T15:04:05Z"),
		"{{alert.change_count}}", fmt.Sprintf("%d", len(alert.Changes)),
		"{{changes.summary}}", strings.Join(summaries, "\\n"),
	)
	return replacer.Replace(body)
}
