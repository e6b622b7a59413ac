package app

import (
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/data/repos"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type Repos struct {
	State repos.StateRepo
}

func wireRepos(store docstore.Store, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		State: repos.NewStateRepo(store, log),
	}
}
