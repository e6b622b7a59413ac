// Package inference selects the text-generation engine used for query classification.
package inference

import (
	"fmt"
	"strings"

	"github.com/yungbote/adbroker-backend/internal/inference/config"
	"github.com/yungbote/adbroker-backend/internal/inference/engine"
	"github.com/yungbote/adbroker-backend/internal/inference/engine/mock"
	"github.com/yungbote/adbroker-backend/internal/inference/engine/oaihttp"
)

func NewEngine(cfg config.EngineConfig) (engine.Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "mock":
		return mock.New(), nil
	case "oai_http":
		return oaihttp.New(cfg)
	default:
		return nil, fmt.Errorf("unknown engine type %q", cfg.Type)
	}
}
