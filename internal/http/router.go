package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/adbroker-backend/internal/http/handlers"
	httpMW "github.com/yungbote/adbroker-backend/internal/http/middleware"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AdHandler      *httpH.AdHandler
	AuctionHandler *httpH.AuctionHandler
	ReportHandler  *httpH.ReportHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/healthcheck", "/readyz", "/metrics"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", func(c *gin.Context) { cfg.Metrics.WriteHTTP(c.Writer, c.Request) })
	}

	// Ads and engagement
	if cfg.AdHandler != nil {
		r.GET("/get_ad", cfg.AdHandler.GetAd)
		r.POST("/track_click", cfg.AdHandler.TrackClick)
		r.POST("/log_query_time", cfg.AdHandler.LogQueryTime)
	}

	// Registry and auction
	if cfg.AuctionHandler != nil {
		r.GET("/categories_ads", cfg.AuctionHandler.ListCategories)
		r.POST("/purchase_category", cfg.AuctionHandler.PurchaseCategory)
	}

	// Reports
	if cfg.ReportHandler != nil {
		r.GET("/categories_for_sale", cfg.ReportHandler.CategoriesForSale)
		r.GET("/company_summary/:company", cfg.ReportHandler.CompanySummary)
		r.GET("/revenue", cfg.ReportHandler.Revenue)
	}

	return r
}
