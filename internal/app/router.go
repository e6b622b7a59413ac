package app

import (
	"github.com/yungbote/adbroker-backend/internal/http"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if observability.TracingEnabled() {
		serviceName = cfg.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		HealthHandler:  handlers.Health,
		AdHandler:      handlers.Ad,
		AuctionHandler: handlers.Auction,
		ReportHandler:  handlers.Report,
	})
}
