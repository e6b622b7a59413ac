package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yungbote/adbroker-backend/internal/domain"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/inference/engine"
	"github.com/yungbote/adbroker-backend/internal/normalization"
	"github.com/yungbote/adbroker-backend/internal/observability"
	"github.com/yungbote/adbroker-backend/internal/platform/ctxutil"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// NoDiseasesSentinel is the classifier's "nothing found" reply.
const NoDiseasesSentinel = "NO DISEASES"

var errMalformedReply = errors.New("malformed classifier reply")

var ordinalLine = regexp.MustCompile(`^\d+[.)]\s+(\S.*)$`)

const classificationPrompt = `You are tasked with identifying the relevant diseases or conditions that are mentioned, referenced, or relevant to the user question below. Return the output in the following manner:

Example Output

1. Arthritis
2. Colon Cancer
3. Back Pain

There may be any number of diseases or even no diseases. When there are no diseases or conditions to return, output exactly:

NO DISEASES

Return nothing else but content in the format of the example outputs above.`

type ClassificationConfig struct {
	Model          string
	Timeout        time.Duration
	MaxConcurrency int64
	Rates          domain.CostRates
	Temperature    float64
	MaxTokens      int
}

type ClassificationService interface {
	// ClassifyQuery returns the normalized diseases named in text, in reply order.
	ClassifyQuery(ctx context.Context, text string) ([]string, error)
}

type classificationService struct {
	log        *logger.Logger
	engine     engine.Engine
	engagement domainagg.EngagementAggregate
	metrics    *observability.Metrics
	sem        *semaphore.Weighted
	cfg        ClassificationConfig
}

func NewClassificationService(log *logger.Logger, eng engine.Engine, engagement domainagg.EngagementAggregate, metrics *observability.Metrics, cfg ClassificationConfig) ClassificationService {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	return &classificationService{
		log:        log.With("service", "ClassificationService"),
		engine:     eng,
		engagement: engagement,
		metrics:    metrics,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

func (s *classificationService) ClassifyQuery(ctx context.Context, text string) ([]string, error) {
	const op = "ClassificationService.ClassifyQuery"
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, domainagg.ClassificationServiceError(op, err)
	}
	defer s.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.engine.GenerateText(callCtx, s.cfg.Model, []engine.Message{
		{Role: "system", Content: classificationPrompt},
		{Role: "user", Content: text},
	}, engine.GenerateOptions{Temperature: s.cfg.Temperature, MaxTokens: s.cfg.MaxTokens})
	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		s.metrics.ObserveClassification(s.cfg.Model, status, time.Since(start), 0, 0)
		s.log.With(ctxutil.LogFields(ctx)...).Warn("classifier call failed", "model", s.cfg.Model, "status", status, "error", err)
		return nil, domainagg.ClassificationServiceError(op, err)
	}

	usage := domain.UsageReport{InputTokens: res.Usage.InputTokens, OutputTokens: res.Usage.OutputTokens}
	cost := s.cfg.Rates.Cost(usage)

	names, err := ParseClassifierReply(res.Text)
	if err != nil {
		s.metrics.ObserveClassification(s.cfg.Model, "unparseable", time.Since(start), usage.InputTokens, usage.OutputTokens)
		s.log.With(ctxutil.LogFields(ctx)...).Warn("classifier reply rejected", "model", s.cfg.Model, "error", err)
		return nil, domainagg.ClassificationServiceError(op, err)
	}
	s.metrics.ObserveClassification(s.cfg.Model, "success", time.Since(start), usage.InputTokens, usage.OutputTokens)

	if err := s.engagement.RecordClassification(ctx, domainagg.ClassificationRecord{
		Diseases: names,
		Source:   domain.CostSourceClassification,
		Cost:     cost,
	}); err != nil {
		return nil, err
	}
	s.metrics.AddCost(domain.CostSourceClassification, cost)
	return names, nil
}

// ParseClassifierReply reads the "<ordinal>. <Name>" protocol. A reply holding the
// sentinel yields no names; any other line without an ordinal is an error.
// Names are normalized and a name listed twice is kept once.
func ParseClassifierReply(reply string) ([]string, error) {
	if strings.Contains(reply, NoDiseasesSentinel) {
		return []string{}, nil
	}
	var raw []string
	for i, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := ordinalLine.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: line %d %q", errMalformedReply, i+1, line)
		}
		raw = append(raw, m[1])
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty reply", errMalformedReply)
	}
	return normalization.Diseases(raw), nil
}
