package domain

import "sort"

// CostSourceClassification is the ledger key for classifier calls.
const CostSourceClassification = "classification"

// UsageReport is the priced token usage of one external classification call.
type UsageReport struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CostRates are currency units per 1000 tokens.
type CostRates struct {
	InputPer1K  float64
	OutputPer1K float64
}

func (r CostRates) Cost(u UsageReport) float64 {
	in := u.InputTokens
	if in < 0 {
		in = 0
	}
	out := u.OutputTokens
	if out < 0 {
		out = 0
	}
	return (float64(in)/1000.0)*r.InputPer1K + (float64(out)/1000.0)*r.OutputPer1K
}

// CostLedger is the running external cost, kept per source.
type CostLedger struct {
	BySource map[string]float64 `json:"by_source"`
	Calls    int64              `json:"calls"`
}

func (l CostLedger) Total() float64 {
	keys := make([]string, 0, len(l.BySource))
	for k := range l.BySource {
		keys = append(keys, k)
	}
	// fixed summation order keeps the float total reproducible
	sort.Strings(keys)
	total := 0.0
	for _, k := range keys {
		total += l.BySource[k]
	}
	return total
}

func (l *CostLedger) Add(source string, amount float64) {
	if l.BySource == nil {
		l.BySource = map[string]float64{}
	}
	l.BySource[source] += amount
	l.Calls++
}
