// Monitor 등록/수정/삭제 비즈니스 로직 정의
//
// 처리 흐름:
//  1. Create: 설정 검증 후 active 상태로 등록, 첫 체크는 즉시 예약
//  2. UpdateConfig: 설정 검증 후 교체 (다음 체크부터 새 설정 적용)
//  3. Pause/Resume: 상태 토글, Resume은 실패 카운터 리셋 + 즉시 재예약
//  4. Delete: soft delete (과거 Alert가 참조하므로 물리 삭제하지 않음)
//
// 설정 검증 실패가 유일한 hard failure 경계

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bizradar/backend/internal/model"
)

// monitorStore - Monitor 영속화 인터페이스 (service 전용)
type monitorStore interface {
	InsertMonitor(ctx context.Context, m *model.Monitor) error
	GetMonitor(ctx context.Context, id string) (*model.Monitor, error)
	ListMonitors(ctx context.Context) ([]model.Monitor, error)
	UpdateMonitorConfig(ctx context.Context, id string, cfg model.MonitorConfig) error
	UpdateMonitorStatus(ctx context.Context, id string, status model.MonitorStatus, resetFailures bool) error
}

// MonitorService 구조체 정의
type MonitorService struct {
	db monitorStore
}

// MonitorService 객체 생성
func NewMonitorService(db monitorStore) *MonitorService {
	return &MonitorService{db: db}
}

// Create - Monitor 신규 등록
// 첫 체크는 다음 Scheduler tick에서 바로 수행되도록 예약
func (s *MonitorService) Create(ctx context.Context, entityID string, cfg model.MonitorConfig) (*model.Monitor, error) {
	if entityID == "" {
		return nil, fmt.Errorf("entity_id is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &model.Monitor{
		ID:          uuid.NewString(),
		EntityID:    entityID,
		Config:      cfg,
		Status:      model.MonitorActive,
		NextCheckAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.InsertMonitor(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	return m, nil
}

func (s *MonitorService) Get(ctx context.Context, id string) (*model.Monitor, error) {
	return s.db.GetMonitor(ctx, id)
}

func (s *MonitorService) List(ctx context.Context) ([]model.Monitor, error) {
	return s.db.ListMonitors(ctx)
}

// UpdateConfig - Monitor 설정 교체 (전체 교체, 부분 패치 아님)
func (s *MonitorService) UpdateConfig(ctx context.Context, id string, cfg model.MonitorConfig) (*model.Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.UpdateMonitorConfig(ctx, id, cfg); err != nil {
		return nil, err
	}
	return s.db.GetMonitor(ctx, id)
}

// Pause - 체크 일시 중지 (Scheduler claim 대상에서 제외됨)
func (s *MonitorService) Pause(ctx context.Context, id string) error {
	return s.db.UpdateMonitorStatus(ctx, id, model.MonitorPaused, false)
}

// Resume - paused/error 상태에서 재개
// 실패 카운터와 last_error를 리셋하고 즉시 재체크를 예약함
func (s *MonitorService) Resume(ctx context.Context, id string) error {
	return s.db.UpdateMonitorStatus(ctx, id, model.MonitorActive, true)
}

// Delete - soft delete
func (s *MonitorService) Delete(ctx context.Context, id string) error {
	return s.db.UpdateMonitorStatus(ctx, id, model.MonitorDeleted, false)
}
