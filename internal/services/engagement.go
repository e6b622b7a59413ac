package services

import (
	"context"
	"time"

	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type ClickResult struct {
	Status string            `json:"status"`
	Logged time.Time         `json:"logged"`
	Stats  domain.ClickStats `json:"-"`
}

type EngagementService interface {
	TrackClick(ctx context.Context, disease string) (ClickResult, error)
	LogQueryTime(ctx context.Context, diseases []string, durationMs int64) error
}

type engagementService struct {
	log        *logger.Logger
	categories domainagg.CategoryAggregate
	engagement domainagg.EngagementAggregate
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewEngagementService(log *logger.Logger, categories domainagg.CategoryAggregate, engagement domainagg.EngagementAggregate, metrics *observability.Metrics) EngagementService {
	return &engagementService{
		log:        log.With("service", "EngagementService"),
		categories: categories,
		engagement: engagement,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *engagementService) TrackClick(ctx context.Context, disease string) (ClickResult, error) {
	stats, err := s.categories.RecordClick(ctx, disease)
	if err != nil {
		s.metrics.IncClick(string(domainagg.CodeOf(err)))
		return ClickResult{}, err
	}
	s.metrics.IncClick("recorded")
	return ClickResult{Status: "ok", Logged: s.now(), Stats: stats}, nil
}

func (s *engagementService) LogQueryTime(ctx context.Context, diseases []string, durationMs int64) error {
	return s.engagement.LogQueryTime(ctx, diseases, durationMs)
}
