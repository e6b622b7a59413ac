package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/http/response"
	"github.com/yungbote/adbroker-backend/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /categories_for_sale
func (h *ReportHandler) CategoriesForSale(c *gin.Context) {
	entries, err := h.reports.ListUnclaimed(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if entries == nil {
		entries = []domain.UnclaimedEntry{}
	}
	response.RespondOK(c, gin.H{"unclaimed_diseases": entries})
}

// GET /company_summary/:company
func (h *ReportHandler) CompanySummary(c *gin.Context) {
	sum, err := h.reports.CompanySummary(c.Request.Context(), c.Param("company"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sum)
}

// GET /revenue
func (h *ReportHandler) Revenue(c *gin.Context) {
	rep, err := h.reports.RevenueReport(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rep)
}
