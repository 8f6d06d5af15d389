package orchestrator

import "github.com/bizradar/backend/internal/model"

// 신뢰도 산정 상수
//   - confidenceFloor: 전체 실패 시에도 Snapshot은 이 값으로 생성됨
//   - singleSourceBase: 성공 소스 1개일 때의 기본 신뢰도
//   - corroborationBonus: 독립 소스가 추가로 성공할 때마다 가산
const (
	confidenceFloor    = 0.1
	singleSourceBase   = 0.5
	corroborationBonus = 0.15
)

// OverallConfidence - 성공한 Facet 수 기반 Snapshot 전체 신뢰도
// 항상 [confidenceFloor, 1.0] 범위, 성공 수가 늘면 단조 증가 (cap까지)
func OverallConfidence(facets map[model.FacetKind]model.TaskResult) float64 {
	succeeded := 0
	for _, res := range facets {
		if res.Status == model.StatusSuccess {
			succeeded++
		}
	}
	if succeeded == 0 {
		return confidenceFloor
	}

	confidence := singleSourceBase + corroborationBonus*float64(succeeded-1)
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
