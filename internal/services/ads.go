package services

import (
	"context"

	"github.com/yungbote/adbroker-backend/internal/data/documents"
	"github.com/yungbote/adbroker-backend/internal/data/repos"
	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/normalization"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type AdService interface {
	// GetAd classifies query and returns the best-paying owned category, or nil.
	GetAd(ctx context.Context, query string) (*domain.AdPlacement, error)
}

type adService struct {
	log        *logger.Logger
	classifier ClassificationService
	state      repos.StateRepo
	metrics    *observability.Metrics
}

func NewAdService(log *logger.Logger, classifier ClassificationService, state repos.StateRepo, metrics *observability.Metrics) AdService {
	return &adService{
		log:        log.With("service", "AdService"),
		classifier: classifier,
		state:      state,
		metrics:    metrics,
	}
}

func (s *adService) GetAd(ctx context.Context, query string) (*domain.AdPlacement, error) {
	names, err := s.classifier.ClassifyQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		s.metrics.IncAdServed("no_match")
		return nil, nil
	}
	st, err := s.state.Load(ctx, documents.Categories)
	if err != nil {
		return nil, domainagg.PersistenceError("AdService.GetAd", err)
	}
	best, ok := SelectBestAd(st.Categories, names)
	if !ok {
		s.metrics.IncAdServed("unowned")
		return nil, nil
	}
	s.metrics.IncAdServed("served")
	placement := best.Placement()
	return &placement, nil
}

// SelectBestAd picks the candidate with the strictly highest price. On a tie the
// candidate listed first wins.
func SelectBestAd(categories map[string]domain.Category, candidates []string) (domain.Category, bool) {
	var best domain.Category
	found := false
	for _, name := range candidates {
		c, ok := categories[normalization.Disease(name)]
		if !ok {
			continue
		}
		if !found || c.Price > best.Price {
			best = c
			found = true
		}
	}
	return best, found
}
