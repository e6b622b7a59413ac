package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/adbroker-backend/internal/observability"
)

// Hooks receives one ObserveOperation per aggregate write, an IncConflict for every
// optimistic conflict the store reports, and an IncRetry for every re-run after one.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks forwards hook signals to the metrics registry. A nil
// registry yields hooks that drop everything.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(operationLabel(name), strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(operationLabel(name))
}

func (h metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(operationLabel(name))
}

// operationLabel drops the common "Broker." prefix so label values stay short.
func operationLabel(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "Broker.")
}
