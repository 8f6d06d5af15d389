// 재무 지표 API 클라이언트 정의
//
// 환경변수:
//   - FINANCIAL_API_URL: 재무 API 엔드포인트
//   - FINANCIAL_API_KEY: API 키

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
)

// FinancialClient 구조체 정의
type FinancialClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type financialResponse struct {
	Entity   string             `json:"entity"`
	Currency string             `json:"currency"`
	Metrics  map[string]float64 `json:"metrics"`
}

// FinancialClient 객체 생성
func NewFinancialClient(cfg config.FinancialConfig) *FinancialClient {
	return &FinancialClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchMetrics - 엔티티 재무 지표 조회 (metrics, currency 반환)
func (c *FinancialClient) FetchMetrics(ctx context.Context, entity string) (map[string]float64, string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid financial url: %w", err)
	}
	q := u.Query()
	q.Set("entity", entity)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("financial request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("financial API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed financialResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, "", fmt.Errorf("failed to decode financial response: %w", err)
	}
	return parsed.Metrics, parsed.Currency, nil
}
