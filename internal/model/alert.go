// Alert 및 피드백 구조체 정의
// scorer, dispatcher, handler, db 레이어에서 공통으로 사용

package model

import "time"

// FeedbackVerdict - Alert에 대한 사용자 피드백
type FeedbackVerdict string

const (
	FeedbackHelpful    FeedbackVerdict = "helpful"
	FeedbackNotHelpful FeedbackVerdict = "not_helpful"
)

// IsValidVerdict - 피드백 값 검증
func IsValidVerdict(v FeedbackVerdict) bool {
	return v == FeedbackHelpful || v == FeedbackNotHelpful
}

// Alert - 한 번의 Monitor 체크에서 발생한 Change 집합
// 생성 시점에 AggregateConfidence >= Monitor threshold가 보장됨
// (threshold가 나중에 바뀌어도 과거 Alert는 재필터링하지 않음)
type Alert struct {
	ID                  string           `json:"id"`
	MonitorID           string           `json:"monitor_id"`
	EntityID            string           `json:"entity_id"`
	Changes             []Change         `json:"changes"`
	AggregateConfidence float64          `json:"aggregate_confidence"`
	CreatedAt           time.Time        `json:"created_at"`
	Read                bool             `json:"read"`
	Feedback            *FeedbackVerdict `json:"user_feedback,omitempty"`
}

// DimensionFeedback - 차원별 피드백 집계 (adaptive weight 계산용)
type DimensionFeedback struct {
	Dimension  Dimension `json:"dimension"`
	Helpful    int       `json:"helpful"`
	NotHelpful int       `json:"not_helpful"`
}

// DeliveryStatus - 채널 전송 상태
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryPending DeliveryStatus = "pending_retry"
	DeliveryFailed  DeliveryStatus = "failed"
)

// AlertDelivery - 채널별 전송 기록
// 실패 시 Scheduler tick에서 bounded backoff로 재시도
type AlertDelivery struct {
	ID            int64          `json:"id"`
	AlertID       string         `json:"alert_id"`
	Channel       string         `json:"channel"`
	Destination   string         `json:"destination"`
	Status        DeliveryStatus `json:"status"`
	Attempts      int            `json:"attempts"`
	LastError     *string        `json:"last_error,omitempty"`
	NextAttemptAt time.Time      `json:"next_attempt_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ChannelConfig - 전송 채널 설정 (이름 → 어댑터 종류 + 목적지)
type ChannelConfig struct {
	Name        string    `json:"name"`
	Kind        string    `json:"kind"` // slack | webhook | email
	Destination string    `json:"destination"`
	UpdatedAt   time.Time `json:"updated_at"`
}
