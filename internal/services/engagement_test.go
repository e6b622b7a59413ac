package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/adbroker-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

func TestTrackClick(t *testing.T) {
	stack := newTestStack(t)
	testutil.SeedCategories(t, context.Background(), stack.store, testutil.Lilly40())
	svc := NewEngagementService(logger.Nop(), stack.categories, stack.engagement, nil)

	res, err := svc.TrackClick(context.Background(), "Hypertension")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.False(t, res.Logged.IsZero())
	assert.Equal(t, int64(1), res.Stats.Clicks)

	_, err = svc.TrackClick(context.Background(), "gout")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

func TestLogQueryTimeCountsOneQuery(t *testing.T) {
	stack := newTestStack(t)
	svc := NewEngagementService(logger.Nop(), stack.categories, stack.engagement, nil)

	require.NoError(t, svc.LogQueryTime(context.Background(), []string{"asthma", "gout"}, 2500))
	st := stack.load(t)
	assert.Equal(t, int64(1), st.TotalQueries)
	assert.Equal(t, map[string]int64{"asthma": 2500, "gout": 2500}, st.EngagementMs)

	err := svc.LogQueryTime(context.Background(), []string{"asthma"}, -10)
	assert.Equal(t, domainagg.RuleInvalidDuration, domainagg.RuleOf(err))
}
