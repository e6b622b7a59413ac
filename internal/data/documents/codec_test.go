package documents

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/domain"
)

// memDocs is a Writer over raw JSON bodies.
type memDocs map[string]string

func (m memDocs) Decode(name string, v any) (bool, error) {
	body, ok := m[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(body), v)
}

func (m memDocs) Put(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m[name] = string(b)
	return nil
}

func TestReadCategoriesNormalizesKeysAndPrices(t *testing.T) {
	docs := memDocs{Categories: `{
		"Breast Cancer ": {"company": "Genentech", "category_cost": 70, "ad_path": "ad_images/genentech_breast_cancer.png", "link": "https://www.gene.com"},
		"obesity": {"company": "eli lilly", "category_cost": "45.5", "ad_path": "ad_images/lilly_obesity.png", "link": "https://lilly.com"}
	}`}

	cats, err := ReadCategories(docs)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	bc := cats["breast cancer"]
	assert.Equal(t, "breast cancer", bc.Disease)
	assert.Equal(t, "genentech", bc.Company)
	assert.Equal(t, 70.0, bc.Price)
	assert.Equal(t, 45.5, cats["obesity"].Price)
}

func TestReadCategoriesMissingDocumentIsEmpty(t *testing.T) {
	cats, err := ReadCategories(memDocs{})
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestReadClicksFoldsBareNumbers(t *testing.T) {
	docs := memDocs{Clicks: `{"hypertension": 4, "breast cancer": {"clicks": 12, "mentions": 30}, "asthma": {"mentions": 2}}`}

	clicks, err := ReadClicks(docs)
	require.NoError(t, err)
	assert.Equal(t, domain.ClickStats{Clicks: 4}, clicks["hypertension"])
	assert.Equal(t, domain.ClickStats{Clicks: 12, Mentions: 30}, clicks["breast cancer"])
	assert.Equal(t, domain.ClickStats{Mentions: 2}, clicks["asthma"])
}

func TestReadCountsAcceptsRecordsAndMergesVariants(t *testing.T) {
	docs := memDocs{Unclaimed: `{"gout": 3, "Gout": {"mentions": 2}, "lupus": {"mentions": 1}}`}

	counts, err := ReadCounts(docs, Unclaimed)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"gout": 5, "lupus": 1}, counts)
}

func TestReadCountsCorruptValue(t *testing.T) {
	docs := memDocs{Mentions: `{"gout": "many"}`}
	_, err := ReadCounts(docs, Mentions)
	require.Error(t, err)
	assert.True(t, errors.Is(err, docstore.ErrCorrupt))
}

func TestTotalQueriesShapes(t *testing.T) {
	n, err := ReadTotalQueries(memDocs{TotalQueries: `17`})
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	docs := memDocs{}
	require.NoError(t, WriteTotalQueries(docs, 18))
	n, err = ReadTotalQueries(docs)
	require.NoError(t, err)
	assert.Equal(t, int64(18), n)
}

func TestCostLedgerReadsFlatAndStructuredShapes(t *testing.T) {
	flat := memDocs{QueryCosts: `{"query": 0.25, "classification": 0.5}`}
	l, err := ReadCostLedger(flat)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, l.Total(), 1e-12)

	l.Add(domain.CostSourceClassification, 0.25)
	require.NoError(t, WriteCostLedger(flat, l))
	again, err := ReadCostLedger(flat)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, again.Total(), 1e-12)
	assert.Equal(t, int64(1), again.Calls)
	assert.InDelta(t, 0.75, again.BySource[domain.CostSourceClassification], 1e-12)
}
