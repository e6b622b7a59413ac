package app

import (
	"context"
	"fmt"

	"github.com/yungbote/adbroker-backend/internal/inference"
	"github.com/yungbote/adbroker-backend/internal/inference/engine"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type Clients struct {
	Store  StoreBundle
	Engine engine.Engine
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	store, err := resolveStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	eng, err := inference.NewEngine(cfg.Engine)
	if err != nil {
		_ = store.Close()
		return Clients{}, fmt.Errorf("init classifier engine: %w", err)
	}
	log.Info("Classifier engine ready", "type", cfg.Engine.Type, "model", cfg.Classification.Model)

	return Clients{Store: store, Engine: eng}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	_ = c.Store.Close()
}
