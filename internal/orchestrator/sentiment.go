// 리서치 본문에 대한 어휘 기반 감성 분류
// 외부 의존 없이 결정적으로 동작해야 하므로 간단한 lexicon 방식 사용

package orchestrator

import "strings"

var positiveWords = map[string]bool{
	"growth": true, "profit": true, "record": true, "strong": true,
	"expansion": true, "innovative": true, "surge": true, "beat": true,
	"gain": true, "success": true, "leading": true, "upgraded": true,
}

var negativeWords = map[string]bool{
	"loss": true, "decline": true, "lawsuit": true, "layoffs": true,
	"weak": true, "drop": true, "recall": true, "miss": true,
	"downgrade": true, "bankruptcy": true, "fraud": true, "falling": true,
}

// classifySentiment - positive/neutral/negative 3분류
// 신호가 약하면 neutral로 수렴
func classifySentiment(text string) string {
	pos, neg := 0, 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'()")
		if positiveWords[word] {
			pos++
		}
		if negativeWords[word] {
			neg++
		}
	}

	switch {
	case pos > neg*2 && pos > 0:
		return "positive"
	case neg > pos*2 && neg > 0:
		return "negative"
	default:
		return "neutral"
	}
}
