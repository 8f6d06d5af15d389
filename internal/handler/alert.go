// Alert 조회/읽음/피드백 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. GET /api/alerts?monitor_id=&limit=: Monitor별 Alert 목록
//  2. POST /api/alerts/:id/read: 읽음 처리
//  3. POST /api/alerts/:id/feedback: helpful | not_helpful 피드백
//     (피드백은 adaptive weight 계산에 반영됨)

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bizradar/backend/internal/model"
	"github.com/bizradar/backend/internal/service"
)

// Alert 핸들러 구조체 정의
type AlertHandler struct {
	alertService *service.AlertService
}

// Alert 핸들러 객체 생성
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

func (h *AlertHandler) List(c *gin.Context) {
	monitorID := c.Query("monitor_id")
	limit, _ := strconv.Atoi(c.Query("limit"))

	alerts, err := h.alertService.List(c.Request.Context(), monitorID, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *AlertHandler) MarkRead(c *gin.Context) {
	if err := h.alertService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark alert read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

type feedbackRequest struct {
	Verdict model.FeedbackVerdict `json:"verdict"`
}

func (h *AlertHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.alertService.SubmitFeedback(c.Request.Context(), c.Param("id"), req.Verdict); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verdict": req.Verdict})
}
