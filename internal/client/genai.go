// Google GenAI 클라이언트 정의
//  1. EmbedText: 캐시 키 의미 매칭용 임베딩 생성
//  2. ScoreForces: Phase 1 근거 텍스트 기반 경쟁 구도 점수 산출
//
// 환경변수:
//   - AI_API_KEY: GenAI API 키
//   - AI_EMBEDDING_MODEL (default: text-embedding-004)
//   - AI_SCORING_MODEL (default: gemini-2.0-flash)

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bizradar/backend/internal/config"
	"google.golang.org/genai"
)

// GenAIClient 구조체 정의
type GenAIClient struct {
	client         *genai.Client
	embeddingModel string
	scoringModel   string
}

// GenAIClient 객체 생성
func NewGenAIClient(cfg config.GenAIConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &GenAIClient{
		client:         client,
		embeddingModel: cfg.EmbeddingModel,
		scoringModel:   cfg.ScoringModel,
	}, nil
}

// EmbedText - 텍스트 임베딩 생성 (벡터, 모델명 반환)
func (c *GenAIClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	res, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, c.embeddingModel, err
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.embeddingModel, fmt.Errorf("empty embedding result")
	}
	return res.Embeddings[0].Values, c.embeddingModel, nil
}

const scoringPrompt = `You are a competitive-intelligence analyst. Using the evidence below,
score the five competitive forces for the company %q on a 1.0-10.0 scale.
Respond with JSON only, in this exact shape:
{"forces": {"rivalry": 0, "new_entrants": 0, "supplier_power": 0, "buyer_power": 0, "substitutes": 0}, "summary": ""}

Evidence:
%s`

type forcesResult struct {
	Forces  map[string]float64 `json:"forces"`
	Summary string             `json:"summary"`
}

// ScoreForces - 근거 텍스트로 five forces 점수 산출
func (c *GenAIClient) ScoreForces(ctx context.Context, entity, evidence string) (map[string]float64, string, error) {
	prompt := fmt.Sprintf(scoringPrompt, entity, evidence)
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	res, err := c.client.Models.GenerateContent(ctx, c.scoringModel, genai.Text(prompt), cfg)
	if err != nil {
		return nil, "", fmt.Errorf("scoring request failed: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return nil, "", fmt.Errorf("empty scoring response")
	}

	var parsed forcesResult
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to parse scoring response: %w", err)
	}
	if len(parsed.Forces) == 0 {
		return nil, "", fmt.Errorf("scoring response contains no forces")
	}

	// 범위를 벗어난 점수는 1.0~10.0으로 클램프
	for name, score := range parsed.Forces {
		if score < 1.0 {
			parsed.Forces[name] = 1.0
		}
		if score > 10.0 {
			parsed.Forces[name] = 10.0
		}
	}
	return parsed.Forces, parsed.Summary, nil
}
