package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/adbroker-backend/internal/data/aggregates"
)

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

// HooksRecorder keeps every hook signal. Concurrent purchase tests write to it
// from many goroutines, so read through the accessors.
type HooksRecorder struct {
	mu         sync.Mutex
	operations []OperationEvent
	conflicts  map[string]int
	retries    map[string]int
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.operations = append(h.operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conflicts == nil {
		h.conflicts = map[string]int{}
	}
	h.conflicts[name]++
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.retries == nil {
		h.retries = map[string]int{}
	}
	h.retries[name]++
}

func (h *HooksRecorder) Operations() []OperationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]OperationEvent(nil), h.operations...)
}

// Statuses lists the outcome of every recorded run of the named operation.
func (h *HooksRecorder) Statuses(name string) []string {
	var out []string
	for _, op := range h.Operations() {
		if op.Name == name {
			out = append(out, op.Status)
		}
	}
	return out
}

func (h *HooksRecorder) Conflicts(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conflicts[name]
}

func (h *HooksRecorder) Retries(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.retries[name]
}
