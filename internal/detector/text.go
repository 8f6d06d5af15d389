// 텍스트/파생 필드(감성, 내러티브) 비교
//
// 공백/포맷 차이로 인한 false positive를 피하기 위해 정규화된 내용의
// fingerprint(sha256)를 먼저 비교하고, fingerprint가 다를 때만
// difflib 유사도로 실질적 변화 여부를 판정한다.
// hash 기반 감지는 의미 유사성을 보지 못하는 알려진 한계가 있으며
// TextSimilarity 설정으로 민감도를 조절한다.

package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bizradar/backend/internal/model"
	"github.com/pmezard/go-difflib/difflib"
)

// compareText - 감성 라벨 + 내러티브 본문 비교
func (d *Detector) compareText(prev, curr *model.Snapshot) []model.Change {
	prevPayload, ok1 := prev.Facet(model.FacetResearch).(model.ResearchPayload)
	currPayload, ok2 := curr.Facet(model.FacetResearch).(model.ResearchPayload)
	if !ok1 || !ok2 {
		return nil
	}

	var changes []model.Change

	// 감성 라벨 전환은 그 자체로 하나의 Change
	if prevPayload.Sentiment != currPayload.Sentiment {
		changes = append(changes, model.Change{
			Dimension:     model.DimensionSentiment,
			Description:   fmt.Sprintf("sentiment shifted from %s to %s", prevPayload.Sentiment, currPayload.Sentiment),
			Magnitude:     1.0,
			Confidence:    baseConfidence[model.DimensionSentiment],
			PreviousValue: prevPayload.Sentiment,
			NewValue:      currPayload.Sentiment,
		})
	}

	prevNorm := normalizeText(prevPayload.Narrative)
	currNorm := normalizeText(currPayload.Narrative)
	if fingerprint(prevNorm) == fingerprint(currNorm) {
		return changes
	}

	ratio := similarityRatio(prevNorm, currNorm)
	if ratio >= d.cfg.TextSimilarity {
		// fingerprint는 다르지만 내용상 미미한 변화로 판정
		return changes
	}

	changes = append(changes, model.Change{
		Dimension:     model.DimensionSentiment,
		Description:   fmt.Sprintf("narrative content materially changed (similarity %.2f)", ratio),
		Magnitude:     1.0 - ratio,
		Confidence:    baseConfidence[model.DimensionSentiment],
		PreviousValue: fingerprint(prevNorm),
		NewValue:      fingerprint(currNorm),
	})
	return changes
}

// normalizeText - 소문자화 + 공백 축약 (포맷 차이 제거)
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func fingerprint(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// similarityRatio - 단어 단위 difflib 유사도 [0,1]
func similarityRatio(a, b string) float64 {
	matcher := difflib.NewMatcher(strings.Fields(a), strings.Fields(b))
	return matcher.Ratio()
}
