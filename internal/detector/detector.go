// Change Detector - 연속된 두 Snapshot을 차원별로 비교
//
// 설계 제약:
//  1. 상태 없는 순수 비교 (detect 호출 간 공유 상태 없음)
//  2. 차원별 comparator는 서로 독립: 한 comparator의 실패(panic 포함)는
//     해당 차원만 건너뛰고 나머지 차원은 계속 비교됨
//  3. 항상 같은 엔티티의 "직전" Snapshot하고만 비교됨 (호출자 책임)

package detector

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/bizradar/backend/internal/model"
)

// Config - 차원별 민감도 설정
type Config struct {
	// ForceDelta: scored-force 점수의 절대 delta가 이 값을 초과하면 Change
	ForceDelta float64

	// MetricPercent: 재무 지표 변화율(%)의 절대값이 이 값을 초과하면 Change
	MetricPercent float64

	// TextSimilarity: fingerprint가 다를 때 유사도가 이 값 미만이면 Change
	// hash 기반 감지의 알려진 한계(false positive/negative)를 줄이는 보조 게이트
	TextSimilarity float64
}

func DefaultConfig() Config {
	return Config{
		ForceDelta:     1.0,
		MetricPercent:  10.0,
		TextSimilarity: 0.85,
	}
}

// 차원별 base confidence - 최종 집계는 Scorer가 수행
var baseConfidence = map[model.Dimension]float64{
	model.DimensionForces:      0.9,
	model.DimensionFinancial:   0.85,
	model.DimensionTrends:      0.7,
	model.DimensionCompetitors: 0.7,
	model.DimensionSentiment:   0.5,
}

// Detector 구조체 정의
type Detector struct {
	cfg Config
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

type comparator struct {
	dimension model.Dimension
	compare   func(prev, curr *model.Snapshot) []model.Change
}

// Detect - 이전/현재 Snapshot을 비교해 Change 리스트 반환
// 동일한 Snapshot 쌍에 대해선 빈 리스트
func (d *Detector) Detect(prev, curr *model.Snapshot) []model.Change {
	if prev == nil || curr == nil {
		return nil
	}

	comparators := []comparator{
		{model.DimensionForces, d.compareForces},
		{model.DimensionTrends, d.compareTrends},
		{model.DimensionCompetitors, d.compareCompetitors},
		{model.DimensionFinancial, d.compareFinancial},
		{model.DimensionSentiment, d.compareText},
	}

	var changes []model.Change
	for _, c := range comparators {
		changes = append(changes, runComparator(c, prev, curr)...)
	}
	return changes
}

// runComparator - comparator 하나를 panic 경계 안에서 실행
func runComparator(c comparator, prev, curr *model.Snapshot) (out []model.Change) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Comparator panicked, skipping dimension: dimension=%s, error=%v", c.dimension, r)
			out = nil
		}
	}()
	return c.compare(prev, curr)
}

// compareForces - scored-force 점수 delta 비교
// 양쪽 모두 점수가 있는 force만 비교 (새 force 등장은 delta 비교 대상 아님)
func (d *Detector) compareForces(prev, curr *model.Snapshot) []model.Change {
	prevPayload, ok1 := prev.Facet(model.FacetFramework).(model.FrameworkPayload)
	currPayload, ok2 := curr.Facet(model.FacetFramework).(model.FrameworkPayload)
	if !ok1 || !ok2 {
		return nil
	}

	var changes []model.Change
	for _, name := range sortedKeys(prevPayload.Forces) {
		prevScore := prevPayload.Forces[name]
		currScore, ok := currPayload.Forces[name]
		if !ok {
			continue
		}
		delta := currScore - prevScore
		if math.Abs(delta) <= d.cfg.ForceDelta {
			continue
		}
		changes = append(changes, model.Change{
			Dimension:     model.DimensionForces,
			Description:   fmt.Sprintf("competitive force %q moved from %.1f to %.1f", name, prevScore, currScore),
			Magnitude:     delta,
			Confidence:    baseConfidence[model.DimensionForces],
			PreviousValue: fmt.Sprintf("%.1f", prevScore),
			NewValue:      fmt.Sprintf("%.1f", currScore),
		})
	}
	return changes
}

// compareTrends - 트렌드 리스트 멤버십 비교 (순서 변화는 무시)
func (d *Detector) compareTrends(prev, curr *model.Snapshot) []model.Change {
	prevPayload, ok1 := prev.Facet(model.FacetTrends).(model.TrendsPayload)
	currPayload, ok2 := curr.Facet(model.FacetTrends).(model.TrendsPayload)
	if !ok1 || !ok2 {
		return nil
	}
	return listChanges(model.DimensionTrends, "trend", prevPayload.Trends, currPayload.Trends)
}

// compareCompetitors - 경쟁사 언급 리스트 멤버십 비교
func (d *Detector) compareCompetitors(prev, curr *model.Snapshot) []model.Change {
	prevPayload, ok1 := prev.Facet(model.FacetTrends).(model.TrendsPayload)
	currPayload, ok2 := curr.Facet(model.FacetTrends).(model.TrendsPayload)
	if !ok1 || !ok2 {
		return nil
	}
	return listChanges(model.DimensionCompetitors, "competitor", prevPayload.Competitors, currPayload.Competitors)
}

// listChanges - 양방향 집합 차 계산
func listChanges(dim model.Dimension, noun string, prev, curr []string) []model.Change {
	prevSet := toSet(prev)
	currSet := toSet(curr)

	var changes []model.Change
	for _, item := range sortedSet(currSet) {
		if prevSet[item] {
			continue
		}
		changes = append(changes, model.Change{
			Dimension:   dim,
			Description: fmt.Sprintf("new %s appeared: %q", noun, item),
			Magnitude:   1.0,
			Confidence:  baseConfidence[dim],
			NewValue:    item,
		})
	}
	for _, item := range sortedSet(prevSet) {
		if currSet[item] {
			continue
		}
		changes = append(changes, model.Change{
			Dimension:     dim,
			Description:   fmt.Sprintf("%s disappeared: %q", noun, item),
			Magnitude:     1.0,
			Confidence:    baseConfidence[dim],
			PreviousValue: item,
		})
	}
	return changes
}

// compareFinancial - 재무 지표의 상대 변화율 비교
func (d *Detector) compareFinancial(prev, curr *model.Snapshot) []model.Change {
	prevPayload, ok1 := prev.Facet(model.FacetFinancial).(model.FinancialPayload)
	currPayload, ok2 := curr.Facet(model.FacetFinancial).(model.FinancialPayload)
	if !ok1 || !ok2 {
		return nil
	}

	var changes []model.Change
	for _, name := range sortedKeys(prevPayload.Metrics) {
		prevValue := prevPayload.Metrics[name]
		currValue, ok := currPayload.Metrics[name]
		if !ok || prevValue == 0 {
			continue
		}
		percent := (currValue - prevValue) / math.Abs(prevValue) * 100
		if math.Abs(percent) <= d.cfg.MetricPercent {
			continue
		}
		changes = append(changes, model.Change{
			Dimension:     model.DimensionFinancial,
			Description:   fmt.Sprintf("financial metric %q changed %.1f%%", name, percent),
			Magnitude:     percent,
			Confidence:    baseConfidence[model.DimensionFinancial],
			PreviousValue: fmt.Sprintf("%.2f", prevValue),
			NewValue:      fmt.Sprintf("%.2f", currValue),
		})
	}
	return changes
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.TrimSpace(item)] = true
	}
	delete(set, "")
	return set
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
