package app

import (
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	httpH "github.com/yungbote/adbroker-backend/internal/http/handlers"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Ad      *httpH.AdHandler
	Auction *httpH.AuctionHandler
	Report  *httpH.ReportHandler
}

func wireHandlers(log *logger.Logger, store docstore.Store, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(store),
		Ad:      httpH.NewAdHandler(services.Ads, services.Engagement),
		Auction: httpH.NewAuctionHandler(services.Auction),
		Report:  httpH.NewReportHandler(services.Reports),
	}
}
