// Phase별 구체 Task Unit 정의
// 외부 통신은 client 레이어에 위임하고, 여기서는 수집 결과를 FacetPayload로 조립

package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bizradar/backend/internal/client"
	"github.com/bizradar/backend/internal/model"
)

// ResearchSource - 웹 리서치 클라이언트 인터페이스 (task 전용)
type ResearchSource interface {
	Search(ctx context.Context, query string) ([]client.SearchResult, error)
	FetchPage(ctx context.Context, url string) (string, error)
}

// TrendsSource - 시장 트렌드 클라이언트 인터페이스
type TrendsSource interface {
	FetchTrends(ctx context.Context, entity string) (*model.TrendsPayload, error)
}

// FinancialSource - 재무 지표 클라이언트 인터페이스
type FinancialSource interface {
	FetchMetrics(ctx context.Context, entity string) (map[string]float64, string, error)
}

// ForceScorer - 경쟁 구도 점수 산출 인터페이스 (Phase 2)
type ForceScorer interface {
	ScoreForces(ctx context.Context, entity, evidence string) (map[string]float64, string, error)
}

// maxResearchPages - 리서치 Task가 본문을 수집하는 상위 검색 결과 수
const maxResearchPages = 3

// ResearchTask - 웹 리서치 수집 (Phase 1)
type ResearchTask struct {
	source ResearchSource
}

func NewResearchTask(source ResearchSource) *ResearchTask {
	return &ResearchTask{source: source}
}

func (t *ResearchTask) Name() string           { return "web-research" }
func (t *ResearchTask) Facet() model.FacetKind { return model.FacetResearch }

func (t *ResearchTask) Run(ctx context.Context, in Input) (model.FacetPayload, error) {
	results, err := t.source.Search(ctx, in.EntityID)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no search results for entity %q", in.EntityID)
	}

	var (
		narrative strings.Builder
		sources   []string
	)
	for i, res := range results {
		if i >= maxResearchPages {
			break
		}
		text, err := t.source.FetchPage(ctx, res.URL)
		if err != nil {
			// 개별 페이지 실패는 건너뛰고 나머지로 계속 진행
			log.Printf("Failed to fetch research page: url=%s, error=%v", res.URL, err)
			continue
		}
		narrative.WriteString(text)
		narrative.WriteString("\n")
		sources = append(sources, res.URL)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("all research pages failed for entity %q", in.EntityID)
	}

	body := narrative.String()
	return model.ResearchPayload{
		Summary:   summarize(results),
		Narrative: body,
		Sentiment: classifySentiment(body),
		Sources:   sources,
	}, nil
}

// summarize - 검색 결과 snippet을 이어붙인 간이 요약
func summarize(results []client.SearchResult) string {
	var parts []string
	for i, res := range results {
		if i >= maxResearchPages {
			break
		}
		if res.Snippet != "" {
			parts = append(parts, res.Snippet)
		}
	}
	return strings.Join(parts, " ")
}

// TrendsTask - 시장 트렌드 수집 (Phase 1)
type TrendsTask struct {
	source TrendsSource
}

func NewTrendsTask(source TrendsSource) *TrendsTask {
	return &TrendsTask{source: source}
}

func (t *TrendsTask) Name() string           { return "market-trends" }
func (t *TrendsTask) Facet() model.FacetKind { return model.FacetTrends }

func (t *TrendsTask) Run(ctx context.Context, in Input) (model.FacetPayload, error) {
	payload, err := t.source.FetchTrends(ctx, in.EntityID)
	if err != nil {
		return nil, err
	}
	return *payload, nil
}

// FinancialTask - 재무 지표 수집 (Phase 1)
type FinancialTask struct {
	source FinancialSource
}

func NewFinancialTask(source FinancialSource) *FinancialTask {
	return &FinancialTask{source: source}
}

func (t *FinancialTask) Name() string           { return "financial-metrics" }
func (t *FinancialTask) Facet() model.FacetKind { return model.FacetFinancial }

func (t *FinancialTask) Run(ctx context.Context, in Input) (model.FacetPayload, error) {
	metrics, currency, err := t.source.FetchMetrics(ctx, in.EntityID)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("no financial metrics for entity %q", in.EntityID)
	}
	return model.FinancialPayload{Metrics: metrics, Currency: currency}, nil
}

// FrameworkTask - 경쟁 구도 점수 산출 (Phase 2)
// Phase 1에서 성공한 Facet들의 내용을 근거(evidence)로 전달
type FrameworkTask struct {
	scorer ForceScorer
}

func NewFrameworkTask(scorer ForceScorer) *FrameworkTask {
	return &FrameworkTask{scorer: scorer}
}

func (t *FrameworkTask) Name() string           { return "framework-scoring" }
func (t *FrameworkTask) Facet() model.FacetKind { return model.FacetFramework }

func (t *FrameworkTask) Run(ctx context.Context, in Input) (model.FacetPayload, error) {
	evidence := buildEvidence(in.Facets)
	if evidence == "" {
		return nil, fmt.Errorf("no source evidence available")
	}

	forces, summary, err := t.scorer.ScoreForces(ctx, in.EntityID, evidence)
	if err != nil {
		return nil, err
	}
	return model.FrameworkPayload{Forces: forces, Summary: summary}, nil
}

// buildEvidence - 성공한 Phase 1 Facet들을 scoring 입력 텍스트로 변환
func buildEvidence(facets map[model.FacetKind]model.TaskResult) string {
	var b strings.Builder
	for _, res := range facets {
		if res.Status != model.StatusSuccess || res.Payload == nil {
			continue
		}
		switch p := res.Payload.(type) {
		case model.ResearchPayload:
			b.WriteString("[research] ")
			b.WriteString(p.Summary)
			b.WriteString("\n")
		case model.TrendsPayload:
			b.WriteString("[trends] ")
			b.WriteString(strings.Join(p.Trends, ", "))
			if len(p.Competitors) > 0 {
				b.WriteString(" / competitors: ")
				b.WriteString(strings.Join(p.Competitors, ", "))
			}
			b.WriteString("\n")
		case model.FinancialPayload:
			b.WriteString("[financial] ")
			for name, value := range p.Metrics {
				fmt.Fprintf(&b, "%s=%.2f ", name, value)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
