package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/adbroker-backend/internal/http/response"
	"github.com/yungbote/adbroker-backend/internal/platform/apierr"
	"github.com/yungbote/adbroker-backend/internal/services"
)

type AdHandler struct {
	ads        services.AdService
	engagement services.EngagementService
}

func NewAdHandler(ads services.AdService, engagement services.EngagementService) *AdHandler {
	return &AdHandler{ads: ads, engagement: engagement}
}

// GET /get_ad?query=
func (h *AdHandler) GetAd(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		response.RespondErr(c, apierr.Missing("query"))
		return
	}
	ad, err := h.ads.GetAd(c.Request.Context(), query)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

type trackClickRequest struct {
	Disease string `json:"disease" binding:"required"`
	// Company is sent by older clients and ignored.
	Company string `json:"company"`
}

// POST /track_click
func (h *AdHandler) TrackClick(c *gin.Context) {
	var req trackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest(err))
		return
	}
	res, err := h.engagement.TrackClick(c.Request.Context(), req.Disease)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

type logQueryTimeRequest struct {
	Diseases   []string `json:"diseases"`
	DurationMs *int64   `json:"duration_ms" binding:"required"`
}

// POST /log_query_time
func (h *AdHandler) LogQueryTime(c *gin.Context) {
	var req logQueryTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest(err))
		return
	}
	if err := h.engagement.LogQueryTime(c.Request.Context(), req.Diseases, *req.DurationMs); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}
