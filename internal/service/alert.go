// Alert 조회 및 피드백 비즈니스 로직 정의

package service

import (
	"context"
	"fmt"

	"github.com/bizradar/backend/internal/model"
)

// alertStore - Alert 영속화 인터페이스 (service 전용)
type alertStore interface {
	GetAlert(ctx context.Context, id string) (*model.Alert, error)
	ListAlertsByMonitor(ctx context.Context, monitorID string, limit int) ([]model.Alert, error)
	MarkAlertRead(ctx context.Context, id string) error
	SetAlertFeedback(ctx context.Context, id string, verdict model.FeedbackVerdict) error
}

const defaultAlertListLimit = 50

// AlertService 구조체 정의
type AlertService struct {
	db alertStore
}

// AlertService 객체 생성
func NewAlertService(db alertStore) *AlertService {
	return &AlertService{db: db}
}

func (s *AlertService) Get(ctx context.Context, id string) (*model.Alert, error) {
	return s.db.GetAlert(ctx, id)
}

// List - Monitor별 Alert 목록 (최신순)
func (s *AlertService) List(ctx context.Context, monitorID string, limit int) ([]model.Alert, error) {
	if monitorID == "" {
		return nil, fmt.Errorf("monitor_id is required")
	}
	if limit <= 0 {
		limit = defaultAlertListLimit
	}
	return s.db.ListAlertsByMonitor(ctx, monitorID, limit)
}

func (s *AlertService) MarkRead(ctx context.Context, id string) error {
	return s.db.MarkAlertRead(ctx, id)
}

// SubmitFeedback - helpful/not_helpful 피드백 기록
// 기록된 피드백은 adaptive weight 계산(scorer.FeedbackWeights)에 반영됨
func (s *AlertService) SubmitFeedback(ctx context.Context, id string, verdict model.FeedbackVerdict) error {
	if !model.IsValidVerdict(verdict) {
		return fmt.Errorf("invalid verdict: %q (expected helpful or not_helpful)", verdict)
	}
	return s.db.SetAlertFeedback(ctx, id, verdict)
}
