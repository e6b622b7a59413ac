package handlers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/http/response"
	"github.com/yungbote/adbroker-backend/internal/platform/apierr"
	"github.com/yungbote/adbroker-backend/internal/services"
)

type AuctionHandler struct {
	auction services.AuctionService
}

func NewAuctionHandler(auction services.AuctionService) *AuctionHandler {
	return &AuctionHandler{auction: auction}
}

// bidAmount accepts 90, 90.5 or "90" and keeps the raw text so the
// service decides what is a valid bid.
type bidAmount string

func (b *bidAmount) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*b = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*b = bidAmount(s)
		return nil
	}
	*b = bidAmount(raw)
	return nil
}

type purchaseRequest struct {
	Disease  string    `json:"disease"`
	Company  string    `json:"company"`
	BidPrice bidAmount `json:"bid_price"`
	AdLink   string    `json:"ad_link"`

	// ExpectedPrice is the price shown to the bidder; optional.
	ExpectedPrice bidAmount `json:"expected_price"`
}

// POST /purchase_category
func (h *AuctionHandler) PurchaseCategory(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest(err))
		return
	}
	if strings.TrimSpace(req.Disease) == "" {
		response.RespondErr(c, apierr.Missing("disease"))
		return
	}
	receipt, err := h.auction.PurchaseCategory(c.Request.Context(), services.PurchaseRequest{
		Disease:       req.Disease,
		Company:       req.Company,
		Bid:           string(req.BidPrice),
		Link:          req.AdLink,
		ExpectedPrice: string(req.ExpectedPrice),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message":    "Successfully purchased " + receipt.Disease + " for " + receipt.Company,
		"receipt_id": receipt.ID,
		"receipt":    receipt,
	})
}

// GET /categories_ads
func (h *AuctionHandler) ListCategories(c *gin.Context) {
	cats, err := h.auction.ListCategories(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if cats == nil {
		cats = map[string]domain.Category{}
	}
	response.RespondOK(c, cats)
}
