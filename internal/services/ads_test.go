package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/adbroker-backend/internal/data/repos/testutil"
	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/inference/engine/mock"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

func TestSelectBestAd(t *testing.T) {
	cats := map[string]domain.Category{
		"breast cancer": testutil.Genentech70(),
		"hypertension":  testutil.Lilly40(),
		"asthma":        {Disease: "asthma", Company: "pfizer", Price: 70},
	}

	best, ok := SelectBestAd(cats, []string{"hypertension", "breast cancer"})
	require.True(t, ok)
	assert.Equal(t, "breast cancer", best.Disease)

	best, ok = SelectBestAd(cats, []string{"asthma", "Breast Cancer"})
	require.True(t, ok)
	assert.Equal(t, "asthma", best.Disease, "ties go to the first candidate")

	best, ok = SelectBestAd(cats, []string{"Breast Cancer", "asthma"})
	require.True(t, ok)
	assert.Equal(t, "breast cancer", best.Disease)

	_, ok = SelectBestAd(cats, []string{"gout"})
	assert.False(t, ok)
	_, ok = SelectBestAd(cats, nil)
	assert.False(t, ok)
}

func TestGetAdReturnsHighestPayingCategory(t *testing.T) {
	stack := newTestStack(t)
	testutil.SeedCategories(t, context.Background(), stack.store, testutil.Genentech70(), testutil.Lilly40())
	classifier := NewClassificationService(logger.Nop(), mock.Scripted(mock.Text("1. Hypertension\n2. Breast Cancer", 50, 5)), stack.engagement, nil, ClassificationConfig{})
	svc := NewAdService(logger.Nop(), classifier, stack.state, nil)

	ad, err := svc.GetAd(context.Background(), "blood pressure meds during chemo")
	require.NoError(t, err)
	require.NotNil(t, ad)
	assert.Equal(t, domain.AdPlacement{
		Category: "breast cancer",
		AdPath:   "ad_images/genentech_breast_cancer.png",
		Company:  "genentech",
		Price:    70,
		Link:     "https://www.gene.com/patients/medicines/herceptin",
	}, *ad)

	st := stack.load(t)
	assert.Equal(t, int64(1), st.Mentions["hypertension"])
	assert.Equal(t, int64(1), st.Clicks["breast cancer"].Mentions)
	assert.Empty(t, st.Unclaimed)
}

func TestGetAdWithoutOwnedMatchIsNil(t *testing.T) {
	stack := newTestStack(t)
	testutil.SeedCategories(t, context.Background(), stack.store, testutil.Genentech70())
	replies := mock.Scripted(mock.Text("1. Gout", 10, 1), mock.Text("NO DISEASES", 10, 1))
	svc := NewAdService(logger.Nop(), NewClassificationService(logger.Nop(), replies, stack.engagement, nil, ClassificationConfig{}), stack.state, nil)

	ad, err := svc.GetAd(context.Background(), "toe pain")
	require.NoError(t, err)
	assert.Nil(t, ad)

	ad, err = svc.GetAd(context.Background(), "hello")
	require.NoError(t, err)
	assert.Nil(t, ad)

	assert.Equal(t, map[string]int64{"gout": 1}, stack.load(t).Unclaimed)
}
