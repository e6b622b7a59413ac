package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/adbroker-backend/internal/data/aggregates"
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/data/repos"
	"github.com/yungbote/adbroker-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
)

type testStack struct {
	store      *docstore.GormStore
	state      repos.StateRepo
	categories domainagg.CategoryAggregate
	engagement domainagg.EngagementAggregate
}

func newTestStack(t *testing.T) testStack {
	t.Helper()
	store := testutil.Store(t)
	base := aggregates.BaseDeps{Store: store, Log: testutil.Logger(t)}
	cats, err := aggregates.NewCategoryAggregate(aggregates.CategoryAggregateDeps{Base: base})
	require.NoError(t, err)
	return testStack{
		store:      store,
		state:      repos.NewStateRepo(store, nil),
		categories: cats,
		engagement: aggregates.NewEngagementAggregate(aggregates.EngagementAggregateDeps{Base: base}),
	}
}

func (s testStack) load(t *testing.T) repos.BrokerState {
	t.Helper()
	st, err := s.state.Load(context.Background())
	require.NoError(t, err)
	return st
}

// fakeEngagement records classifications in memory.
type fakeEngagement struct {
	mu      sync.Mutex
	records []domainagg.ClassificationRecord
	err     error
}

func (f *fakeEngagement) Contract() domainagg.Contract { return domainagg.EngagementAggregateContract }

func (f *fakeEngagement) RecordClassification(_ context.Context, in domainagg.ClassificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, in)
	return nil
}

func (f *fakeEngagement) LogQueryTime(context.Context, []string, int64) error { return nil }

func (f *fakeEngagement) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}
