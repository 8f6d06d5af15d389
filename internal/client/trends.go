// 시장 트렌드 API 클라이언트 정의
//
// 환경변수:
//   - TRENDS_API_URL: 트렌드 API 엔드포인트
//   - TRENDS_API_KEY: API 키

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bizradar/backend/internal/config"
	"github.com/bizradar/backend/internal/model"
)

// TrendsClient 구조체 정의
type TrendsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type trendsResponse struct {
	Entity      string   `json:"entity"`
	Trends      []string `json:"trends"`
	Competitors []string `json:"competitors"`
}

// TrendsClient 객체 생성
func NewTrendsClient(cfg config.TrendsConfig) *TrendsClient {
	return &TrendsClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchTrends - 엔티티 관련 트렌드/경쟁사 리스트 조회
func (c *TrendsClient) FetchTrends(ctx context.Context, entity string) (*model.TrendsPayload, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid trends url: %w", err)
	}
	q := u.Query()
	q.Set("entity", entity)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trends request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("trends API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed trendsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode trends response: %w", err)
	}
	return &model.TrendsPayload{Trends: parsed.Trends, Competitors: parsed.Competitors}, nil
}
