// Alert Scorer - Change 리스트를 집계 신뢰도로 묶어 Alert 생성 여부 결정
//
// 집계 방식: agg = 1 - Π(1 - w·c·m̂)
//   - w: 차원별 weight (adaptive 가능, 기본은 static)
//   - c: Change 자체 confidence (Detector가 부여한 base)
//   - m̂: 차원별로 [0,1] 정규화한 magnitude
//
// 단순 합산 대신 이 결합을 쓰는 이유: 같은 방향의 corroborating change가
// 늘수록 신뢰도가 올라가되, 작은 변화 다수로 점수가 폭주하지 않음 (수확 체감)

package scorer

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/bizradar/backend/internal/model"
	"github.com/google/uuid"
)

// WeightSource - 차원별 weight 조회 전략
// adaptive 구현이 실패하거나 데이터가 없어도 scoring을 막으면 안 됨
type WeightSource interface {
	Weights(ctx context.Context) (map[model.Dimension]float64, error)
}

// DefaultWeights - static 기본 weight
func DefaultWeights() map[model.Dimension]float64 {
	return map[model.Dimension]float64{
		model.DimensionForces:      1.0,
		model.DimensionFinancial:   1.0,
		model.DimensionTrends:      0.8,
		model.DimensionCompetitors: 0.8,
		model.DimensionSentiment:   0.6,
	}
}

// StaticWeights - 고정 weight를 반환하는 WeightSource
type StaticWeights map[model.Dimension]float64

func (w StaticWeights) Weights(ctx context.Context) (map[model.Dimension]float64, error) {
	return w, nil
}

// Scorer 구조체 정의
type Scorer struct {
	source WeightSource
}

func New(source WeightSource) *Scorer {
	if source == nil {
		source = StaticWeights(DefaultWeights())
	}
	return &Scorer{source: source}
}

// Score - Change 집계 후 threshold 이상이면 Alert 생성, 미만이면 nil
// nil이면 Change들은 폐기됨 (독립 저장 없음)
func (s *Scorer) Score(ctx context.Context, changes []model.Change, monitor *model.Monitor) *model.Alert {
	if len(changes) == 0 {
		return nil
	}

	weights := s.lookupWeights(ctx)
	agg := Aggregate(changes, weights)
	if agg < monitor.Config.ConfidenceThreshold {
		log.Printf("Alert suppressed: monitor=%s, aggregate=%.3f, threshold=%.3f, changes=%d",
			monitor.ID, agg, monitor.Config.ConfidenceThreshold, len(changes))
		return nil
	}

	return &model.Alert{
		ID:                  uuid.NewString(),
		MonitorID:           monitor.ID,
		EntityID:            monitor.EntityID,
		Changes:             changes,
		AggregateConfidence: agg,
		CreatedAt:           time.Now().UTC(),
	}
}

// lookupWeights - WeightSource 조회, 실패 시 static 기본값으로 degrade
func (s *Scorer) lookupWeights(ctx context.Context) map[model.Dimension]float64 {
	weights, err := s.source.Weights(ctx)
	if err != nil || len(weights) == 0 {
		if err != nil {
			log.Printf("Weight lookup failed, falling back to static weights: %v", err)
		}
		return DefaultWeights()
	}
	return weights
}

// Aggregate - 수확 체감 결합으로 집계 신뢰도 계산, [0,1]로 클립
func Aggregate(changes []model.Change, weights map[model.Dimension]float64) float64 {
	survival := 1.0
	for _, c := range changes {
		w, ok := weights[c.Dimension]
		if !ok {
			w = 0.5
		}
		contribution := w * c.Confidence * normalizeMagnitude(c)
		if contribution < 0 {
			contribution = 0
		}
		if contribution > 1 {
			contribution = 1
		}
		survival *= 1 - contribution
	}

	agg := 1 - survival
	if agg < 0 {
		return 0
	}
	if agg > 1 {
		return 1
	}
	return agg
}

// normalizeMagnitude - 차원별 단위가 다른 magnitude를 [0,1]로 정규화
//   - forces: delta/10 (점수 스케일이 1~10)
//   - financial: percent/100
//   - 나머지(list/text): 이미 [0,1] 단위
func normalizeMagnitude(c model.Change) float64 {
	mag := math.Abs(c.Magnitude)
	switch c.Dimension {
	case model.DimensionForces:
		mag = mag / 10.0
	case model.DimensionFinancial:
		mag = mag / 100.0
	}
	if mag > 1 {
		mag = 1
	}
	return mag
}
