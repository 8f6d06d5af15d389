// 피드백 기반 adaptive weight 산정
//
// 과거 Alert에 달린 helpful/not_helpful 피드백을 차원별로 집계해
// false positive가 많은 차원의 weight를 깎는다. critical path 밖에서
// 동작해야 하므로 조회 결과를 TTL 캐시하고, DB 실패 시 static weight로
// degrade한다 (scoring을 절대 막지 않음).

package scorer

import (
	"context"
	"sync"
	"time"

	"github.com/bizradar/backend/internal/model"
)

// FeedbackRepo - 차원별 피드백 집계 조회
type FeedbackRepo interface {
	DimensionFeedbackCounts(ctx context.Context) ([]model.DimensionFeedback, error)
}

// 피드백이 의미를 갖기 시작하는 최소 표본 수
const minFeedbackSamples = 5

// FeedbackWeights - FeedbackRepo 기반 WeightSource 구현
type FeedbackWeights struct {
	repo FeedbackRepo
	base map[model.Dimension]float64
	ttl  time.Duration

	mu        sync.Mutex
	cached    map[model.Dimension]float64
	expiresAt time.Time
}

func NewFeedbackWeights(repo FeedbackRepo, ttl time.Duration) *FeedbackWeights {
	return &FeedbackWeights{
		repo: repo,
		base: DefaultWeights(),
		ttl:  ttl,
	}
}

// Weights - 캐시된 adaptive weight 반환 (만료 시 재계산)
func (f *FeedbackWeights) Weights(ctx context.Context) (map[model.Dimension]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil && time.Now().Before(f.expiresAt) {
		return f.cached, nil
	}

	counts, err := f.repo.DimensionFeedbackCounts(ctx)
	if err != nil {
		// 실패 시 에러를 올려 Scorer가 static으로 degrade하게 함
		return nil, err
	}

	f.cached = adjustWeights(f.base, counts)
	f.expiresAt = time.Now().Add(f.ttl)
	return f.cached, nil
}

// adjustWeights - helpful 비율로 base weight 보정
// helpful 비율 r에 대해 weight = base × (0.5 + r), 결과는 [0.5·base, 1.5·base]
func adjustWeights(base map[model.Dimension]float64, counts []model.DimensionFeedback) map[model.Dimension]float64 {
	adjusted := make(map[model.Dimension]float64, len(base))
	for dim, w := range base {
		adjusted[dim] = w
	}

	for _, fb := range counts {
		total := fb.Helpful + fb.NotHelpful
		if total < minFeedbackSamples {
			continue
		}
		baseWeight, ok := base[fb.Dimension]
		if !ok {
			continue
		}
		ratio := float64(fb.Helpful) / float64(total)
		adjusted[fb.Dimension] = baseWeight * (0.5 + ratio)
	}
	return adjusted
}
