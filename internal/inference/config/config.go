package config

import "time"

type EngineConfig struct {
	// Type selects the engine: "mock" or "oai_http".
	Type string `json:"type"`

	// BaseURL is the upstream base URL for "oai_http" engines.
	BaseURL string `json:"base_url,omitempty"`

	// APIKey is optional; when set, requests carry `Authorization: Bearer <api_key>`.
	APIKey string `json:"api_key,omitempty"`

	ChatCompletionsPath string `json:"chat_completions_path,omitempty"`

	Timeout time.Duration `json:"timeout,omitempty"`
}
