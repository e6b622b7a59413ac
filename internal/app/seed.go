package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
)

// LoadSeedFile reads category seed entries. Two shapes are accepted: a JSON list of
// {disease, company, category_cost, link}, or the registry export shape, an object
// keyed by disease whose values carry company, category_cost and link.
func LoadSeedFile(path string) ([]domainagg.SeedEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]domainagg.SeedEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("seed file is empty")
	}
	if raw[0] == '[' {
		var entries []domainagg.SeedEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse seed list: %w", err)
		}
		return entries, nil
	}
	var byDisease map[string]domainagg.SeedEntry
	if err := json.Unmarshal(raw, &byDisease); err != nil {
		return nil, fmt.Errorf("parse seed object: %w", err)
	}
	names := make([]string, 0, len(byDisease))
	for name := range byDisease {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]domainagg.SeedEntry, 0, len(names))
	for _, name := range names {
		e := byDisease[name]
		e.Disease = name
		entries = append(entries, e)
	}
	return entries, nil
}
