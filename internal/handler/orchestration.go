// 온디맨드 오케스트레이션 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. POST /api/orchestrations로 {entity_id, facets} 수신
//  2. OrchestrationService.Analyze 호출 (캐시 경유)
//  3. Snapshot과 캐시 히트 여부 반환
//
// 부분 실패한 Facet도 Snapshot 안에 status와 함께 그대로 반환됨

package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizradar/backend/internal/model"
	"github.com/bizradar/backend/internal/service"
)

// Orchestration 핸들러 구조체 정의
type OrchestrationHandler struct {
	orchestrationService *service.OrchestrationService
}

// Orchestration 핸들러 객체 생성
func NewOrchestrationHandler(orchestrationService *service.OrchestrationService) *OrchestrationHandler {
	return &OrchestrationHandler{
		orchestrationService: orchestrationService,
	}
}

type orchestrationRequest struct {
	EntityID string            `json:"entity_id"`
	Facets   []model.FacetKind `json:"facets"`
}

func (h *OrchestrationHandler) Run(c *gin.Context) {
	var req orchestrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Printf("Orchestration requested: entity=%s, facets=%v", req.EntityID, req.Facets)

	snapshot, cached, err := h.orchestrationService.Analyze(c.Request.Context(), req.EntityID, req.Facets)
	if err != nil {
		// Analyze는 잘못된 입력에서만 에러를 반환함 (부분 실패는 Snapshot에 수렴)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot": snapshot,
		"cached":   cached,
	})
}
