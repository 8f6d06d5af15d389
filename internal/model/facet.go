// Facet(수집 데이터 카테고리) 및 Task 실행 결과 구조체 정의
// orchestrator, detector, db 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import (
	"encoding/json"
	"fmt"
)

// FacetKind - 수집 가능한 데이터 카테고리
type FacetKind string

const (
	// FacetResearch: 웹 리서치 (기업 관련 기사/문서 요약 + 감성)
	FacetResearch FacetKind = "research"

	// FacetTrends: 시장 트렌드 및 경쟁사 언급 리스트
	FacetTrends FacetKind = "trends"

	// FacetFinancial: 재무 지표 (매출, 마진 등)
	FacetFinancial FacetKind = "financial"

	// FacetFramework: Phase 1 결과를 기반으로 산출하는 경쟁 구도 점수
	FacetFramework FacetKind = "framework"
)

// KnownFacets - 등록된 전체 Facet 목록 (검증용)
var KnownFacets = []FacetKind{FacetResearch, FacetTrends, FacetFinancial, FacetFramework}

// IsKnownFacet - 등록된 Facet인지 확인
func IsKnownFacet(kind FacetKind) bool {
	for _, f := range KnownFacets {
		if f == kind {
			return true
		}
	}
	return false
}

// TaskStatus - 개별 Task 실행 결과 상태
type TaskStatus string

const (
	StatusSuccess  TaskStatus = "success"
	StatusFailed   TaskStatus = "failed"
	StatusTimedOut TaskStatus = "timed_out"
)

// FacetPayload - Facet별 수집 데이터의 닫힌 합 타입
// detector의 comparator가 런타임 키 탐색 없이 타입 스위치로 분기 가능
type FacetPayload interface {
	Kind() FacetKind
}

// ResearchPayload - 웹 리서치 결과
type ResearchPayload struct {
	Summary   string   `json:"summary"`
	Narrative string   `json:"narrative"`
	Sentiment string   `json:"sentiment"` // positive | neutral | negative
	Sources   []string `json:"sources"`
}

func (ResearchPayload) Kind() FacetKind { return FacetResearch }

// TrendsPayload - 시장 트렌드 결과
type TrendsPayload struct {
	Trends      []string `json:"trends"`
	Competitors []string `json:"competitors"`
}

func (TrendsPayload) Kind() FacetKind { return FacetTrends }

// FinancialPayload - 재무 지표 결과
// Metrics 키 예시: "revenue", "operating_margin", "market_cap"
type FinancialPayload struct {
	Metrics  map[string]float64 `json:"metrics"`
	Currency string             `json:"currency,omitempty"`
}

func (FinancialPayload) Kind() FacetKind { return FacetFinancial }

// FrameworkPayload - 경쟁 구도(five forces) 점수 결과
// Forces 값 범위: 1.0 ~ 10.0
type FrameworkPayload struct {
	Forces  map[string]float64 `json:"forces"`
	Summary string             `json:"summary,omitempty"`
}

func (FrameworkPayload) Kind() FacetKind { return FacetFramework }

// TaskResult - 개별 Task 실행 결과
// Executor 경계를 넘어 에러가 전파되지 않고 항상 이 형태로 수렴
type TaskResult struct {
	Status  TaskStatus
	Payload FacetPayload // 실패/타임아웃 시 nil
	Error   string
}

// taskResultEnvelope - TaskResult JSONB 직렬화용 내부 포맷
// Payload가 인터페이스이므로 kind 필드로 구체 타입 식별
type taskResultEnvelope struct {
	Status  TaskStatus      `json:"status"`
	Kind    FacetKind       `json:"kind,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (r TaskResult) MarshalJSON() ([]byte, error) {
	env := taskResultEnvelope{Status: r.Status, Error: r.Error}
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		env.Kind = r.Payload.Kind()
		env.Payload = raw
	}
	return json.Marshal(env)
}

func (r *TaskResult) UnmarshalJSON(data []byte) error {
	var env taskResultEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	r.Status = env.Status
	r.Error = env.Error
	r.Payload = nil
	if len(env.Payload) == 0 {
		return nil
	}

	switch env.Kind {
	case FacetResearch:
		var p ResearchPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		r.Payload = p
	case FacetTrends:
		var p TrendsPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		r.Payload = p
	case FacetFinancial:
		var p FinancialPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		r.Payload = p
	case FacetFramework:
		var p FrameworkPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		r.Payload = p
	default:
		return fmt.Errorf("unknown facet kind: %s", env.Kind)
	}
	return nil
}
