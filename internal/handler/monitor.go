// Monitor CRUD 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. POST /api/monitors: 신규 등록 (설정 검증 실패 시 400)
//  2. GET /api/monitors, GET /api/monitors/:id: 조회
//  3. PATCH /api/monitors/:id: 설정 교체
//  4. POST /api/monitors/:id/pause, /resume: 상태 토글
//  5. DELETE /api/monitors/:id: soft delete

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/bizradar/backend/internal/model"
	"github.com/bizradar/backend/internal/service"
)

// Monitor 핸들러 구조체 정의
type MonitorHandler struct {
	monitorService *service.MonitorService
}

// Monitor 핸들러 객체 생성
func NewMonitorHandler(monitorService *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
	}
}

type createMonitorRequest struct {
	EntityID string              `json:"entity_id"`
	Config   model.MonitorConfig `json:"config"`
}

func (h *MonitorHandler) Create(c *gin.Context) {
	var req createMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	m, err := h.monitorService.Create(c.Request.Context(), req.EntityID, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MonitorHandler) List(c *gin.Context) {
	monitors, err := h.monitorService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list monitors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"monitors": monitors})
}

func (h *MonitorHandler) Get(c *gin.Context) {
	m, err := h.monitorService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "monitor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load monitor"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonitorHandler) Update(c *gin.Context) {
	var cfg model.MonitorConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	m, err := h.monitorService.UpdateConfig(c.Request.Context(), c.Param("id"), cfg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "monitor not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonitorHandler) Pause(c *gin.Context) {
	if err := h.monitorService.Pause(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to pause monitor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(model.MonitorPaused)})
}

func (h *MonitorHandler) Resume(c *gin.Context) {
	if err := h.monitorService.Resume(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resume monitor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(model.MonitorActive)})
}

func (h *MonitorHandler) Delete(c *gin.Context) {
	if err := h.monitorService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete monitor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(model.MonitorDeleted)})
}
