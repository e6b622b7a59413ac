package documents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/domain"
	"github.com/yungbote/adbroker-backend/internal/normalization"
)

func corrupt(doc, key string, err error) error {
	return fmt.Errorf("%w: %s[%q]: %v", docstore.ErrCorrupt, doc, key, err)
}

// number accepts 70, 70.5 and "70".
func number(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		s = strings.TrimPrefix(strings.TrimSpace(s), "$")
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func isRecord(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// count reads either a bare number or a record holding the number under field.
func count(raw json.RawMessage, field string) (int64, error) {
	if isRecord(raw) {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rec); err != nil {
			return 0, err
		}
		v, ok := rec[field]
		if !ok {
			return 0, nil
		}
		raw = v
	}
	f, err := number(raw)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f)), nil
}

func rawMap(r Reader, doc string) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if _, err := r.Decode(doc, &m); err != nil {
		return nil, err
	}
	return m, nil
}

type storedCategory struct {
	Company string          `json:"company"`
	Price   json.RawMessage `json:"category_cost"`
	AdPath  string          `json:"ad_path"`
	Link    string          `json:"link"`
}

// ReadCategories returns the registry keyed by normalized disease name.
func ReadCategories(r Reader) (map[string]domain.Category, error) {
	m, err := rawMap(r, Categories)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Category, len(m))
	for k, raw := range m {
		var sc storedCategory
		if err := json.Unmarshal(raw, &sc); err != nil {
			return nil, corrupt(Categories, k, err)
		}
		price, err := number(sc.Price)
		if err != nil {
			return nil, corrupt(Categories, k, err)
		}
		d := normalization.Disease(k)
		if d == "" {
			continue
		}
		out[d] = domain.Category{
			Disease: d,
			Company: normalization.Disease(sc.Company),
			Price:   price,
			AdPath:  sc.AdPath,
			Link:    sc.Link,
		}
	}
	return out, nil
}

func WriteCategories(w Writer, cats map[string]domain.Category) error {
	if cats == nil {
		cats = map[string]domain.Category{}
	}
	return w.Put(Categories, cats)
}

// ReadClicks folds bare click counts into {clicks, mentions} records.
func ReadClicks(r Reader) (map[string]domain.ClickStats, error) {
	m, err := rawMap(r, Clicks)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.ClickStats, len(m))
	for k, raw := range m {
		clicks, err := count(raw, "clicks")
		if err != nil {
			return nil, corrupt(Clicks, k, err)
		}
		var mentions int64
		if isRecord(raw) {
			if mentions, err = count(raw, "mentions"); err != nil {
				return nil, corrupt(Clicks, k, err)
			}
		}
		d := normalization.Disease(k)
		if d == "" {
			continue
		}
		cur := out[d]
		cur.Clicks += clicks
		cur.Mentions += mentions
		out[d] = cur
	}
	return out, nil
}

func WriteClicks(w Writer, clicks map[string]domain.ClickStats) error {
	if clicks == nil {
		clicks = map[string]domain.ClickStats{}
	}
	return w.Put(Clicks, clicks)
}

// ReadCounts reads a name to integer document (mentions, unclaimed, engagement ms).
// Record-shaped values are read from their "mentions" field.
func ReadCounts(r Reader, doc string) (map[string]int64, error) {
	m, err := rawMap(r, doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(m))
	for k, raw := range m {
		n, err := count(raw, "mentions")
		if err != nil {
			return nil, corrupt(doc, k, err)
		}
		d := normalization.Disease(k)
		if d == "" {
			continue
		}
		out[d] += n
	}
	return out, nil
}

func WriteCounts(w Writer, doc string, counts map[string]int64) error {
	if counts == nil {
		counts = map[string]int64{}
	}
	return w.Put(doc, counts)
}

// ReadTotalQueries accepts a bare number or {"total_queries": n}.
func ReadTotalQueries(r Reader) (int64, error) {
	var raw json.RawMessage
	ok, err := r.Decode(TotalQueries, &raw)
	if err != nil || !ok {
		return 0, err
	}
	n, err := count(raw, "total_queries")
	if err != nil {
		return 0, corrupt(TotalQueries, "", err)
	}
	return n, nil
}

func WriteTotalQueries(w Writer, n int64) error {
	return w.Put(TotalQueries, map[string]int64{"total_queries": n})
}

// ReadCostLedger accepts the structured ledger or the flat {source: amount} map.
func ReadCostLedger(r Reader) (domain.CostLedger, error) {
	var raw map[string]json.RawMessage
	ok, err := r.Decode(QueryCosts, &raw)
	if err != nil || !ok {
		return domain.CostLedger{BySource: map[string]float64{}}, err
	}
	ledger := domain.CostLedger{BySource: map[string]float64{}}
	if bySource, ok := raw["by_source"]; ok {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(bySource, &m); err != nil {
			return ledger, corrupt(QueryCosts, "by_source", err)
		}
		for k, v := range m {
			f, err := number(v)
			if err != nil {
				return ledger, corrupt(QueryCosts, k, err)
			}
			ledger.BySource[k] += f
		}
		if calls, ok := raw["calls"]; ok {
			n, err := count(calls, "")
			if err != nil {
				return ledger, corrupt(QueryCosts, "calls", err)
			}
			ledger.Calls = n
		}
		return ledger, nil
	}
	for k, v := range raw {
		f, err := number(v)
		if err != nil {
			return ledger, corrupt(QueryCosts, k, err)
		}
		ledger.BySource[k] += f
	}
	return ledger, nil
}

func WriteCostLedger(w Writer, l domain.CostLedger) error {
	if l.BySource == nil {
		l.BySource = map[string]float64{}
	}
	return w.Put(QueryCosts, l)
}

func ReadPurchaseHistory(r Reader) ([]domain.PurchaseReceipt, error) {
	var out []domain.PurchaseReceipt
	if _, err := r.Decode(PurchaseHistory, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PurchasedAt.Before(out[j].PurchasedAt) })
	return out, nil
}

func WritePurchaseHistory(w Writer, receipts []domain.PurchaseReceipt) error {
	if receipts == nil {
		receipts = []domain.PurchaseReceipt{}
	}
	return w.Put(PurchaseHistory, receipts)
}
