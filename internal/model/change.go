package model

// Dimension - Change Detector가 독립적으로 비교하는 축
type Dimension string

const (
	DimensionForces      Dimension = "forces"
	DimensionTrends      Dimension = "trends"
	DimensionCompetitors Dimension = "competitors"
	DimensionFinancial   Dimension = "financial"
	DimensionSentiment   Dimension = "sentiment"
)

// Change - 연속된 두 Snapshot 간 감지된 차이 하나 (불변)
// Detector만 생성하며 항상 정확히 하나의 Alert에 귀속됨
type Change struct {
	Dimension   Dimension `json:"dimension"`
	Description string    `json:"description"`

	// Magnitude 단위는 차원별로 다름:
	//   - forces: 점수 delta
	//   - financial: 변화율(%)
	//   - trends/competitors: 항목당 1.0
	//   - sentiment: 1 - 텍스트 유사도
	Magnitude float64 `json:"magnitude"`

	// Confidence: 차원별 base weight에서 시작, 최종 집계는 Scorer 담당
	Confidence float64 `json:"confidence"`

	PreviousValue string `json:"previous_value"`
	NewValue      string `json:"new_value"`
}
