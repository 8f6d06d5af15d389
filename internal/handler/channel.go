// 전송 채널 설정 요청을 처리하는 핸들러

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizradar/backend/internal/model"
	"github.com/bizradar/backend/internal/service"
)

// Channel 핸들러 구조체 정의
type ChannelHandler struct {
	channelService *service.ChannelService
}

// Channel 핸들러 객체 생성
func NewChannelHandler(channelService *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{
		channelService: channelService,
	}
}

func (h *ChannelHandler) Upsert(c *gin.Context) {
	var cfg model.ChannelConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.channelService.Upsert(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channelService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}
