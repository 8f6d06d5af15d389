// Monitor(지속 관찰 등록) 구조체 및 상태 전이 정의
//
// 상태 전이:
//   - active ⇄ paused: 사용자 토글
//   - active → error: 연속 체크 실패가 ceiling에 도달하면 자동 전환 (auto-pause)
//   - error → active: 사용자 명시적 재개 (실패 카운터 리셋)
//   - any → deleted: soft delete (Alert가 참조하므로 물리 삭제하지 않음)

package model

import (
	"fmt"
	"time"
)

// MonitorStatus - Monitor 라이프사이클 상태
type MonitorStatus string

const (
	MonitorActive  MonitorStatus = "active"
	MonitorPaused  MonitorStatus = "paused"
	MonitorError   MonitorStatus = "error"
	MonitorDeleted MonitorStatus = "deleted"
)

// Cadence - 재체크 주기
type Cadence string

const (
	CadenceHourly Cadence = "hourly"
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// Interval - Cadence를 time.Duration으로 변환
func (c Cadence) Interval() time.Duration {
	switch c {
	case CadenceHourly:
		return time.Hour
	case CadenceDaily:
		return 24 * time.Hour
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// MonitorConfig - 사용자가 소유하는 Monitor 설정
type MonitorConfig struct {
	Cadence             Cadence     `json:"cadence"`
	ConfidenceThreshold float64     `json:"confidence_threshold"`
	EnabledFacets       []FacetKind `json:"enabled_facets"`
	Channels            []string    `json:"channels"`
}

// Validate - Monitor 생성/수정 경계에서의 유일한 hard failure
// 이외의 런타임 실패는 전부 graceful degradation으로 처리
func (c MonitorConfig) Validate() error {
	switch c.Cadence {
	case CadenceHourly, CadenceDaily, CadenceWeekly:
	default:
		return fmt.Errorf("invalid cadence: %q (expected hourly, daily or weekly)", c.Cadence)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be within [0,1], got %v", c.ConfidenceThreshold)
	}
	if len(c.EnabledFacets) == 0 {
		return fmt.Errorf("enabled_facets must not be empty")
	}
	for _, f := range c.EnabledFacets {
		if !IsKnownFacet(f) {
			return fmt.Errorf("unknown facet: %q", f)
		}
	}
	return nil
}

// Monitor - 엔티티 지속 관찰 등록
type Monitor struct {
	ID       string        `json:"id"`
	EntityID string        `json:"entity_id"`
	Config   MonitorConfig `json:"config"`
	Status   MonitorStatus `json:"status"`

	// NextCheckAt: Scheduler가 claim 시점에 원자적으로 전진시킴
	NextCheckAt time.Time `json:"next_check_at"`

	// ConsecutiveFailures: 성공 체크 시 0으로 리셋
	ConsecutiveFailures int     `json:"consecutive_failures"`
	LastError           *string `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
