package model

import "time"

// Snapshot - 한 번의 오케스트레이션 실행 결과 (불변)
// 동일 엔티티의 Snapshot은 CreatedAt 기준으로 전순서가 보장되며,
// 다음 실행 결과로 대체될 뿐 수정되지 않음
type Snapshot struct {
	ID                string                   `json:"id"`
	EntityID          string                   `json:"entity_id"`
	CreatedAt         time.Time                `json:"created_at"`
	Facets            map[FacetKind]TaskResult `json:"facets"`
	OverallConfidence float64                  `json:"overall_confidence"`
}

// SuccessCount - 성공한 Facet 개수
func (s *Snapshot) SuccessCount() int {
	count := 0
	for _, res := range s.Facets {
		if res.Status == StatusSuccess {
			count++
		}
	}
	return count
}

// Facet - 특정 Facet의 성공 결과 payload 조회 (실패/부재 시 nil)
func (s *Snapshot) Facet(kind FacetKind) FacetPayload {
	res, ok := s.Facets[kind]
	if !ok || res.Status != StatusSuccess {
		return nil
	}
	return res.Payload
}
