package model

import "time"

// Observation is one recorded answer-engine response to a brand prompt.
type Observation struct {
	ID             string    `json:"id"`
	WorkspaceID    string    `json:"workspace_id"`
	Engine         string    `json:"engine"`
	Prompt         string    `json:"prompt"`
	BrandMentioned bool      `json:"brand_mentioned"`
	BrandPosition  int       `json:"brand_position,omitempty"` // 1-based rank in the answer, 0 if absent
	Competitors    []string  `json:"competitors,omitempty"`
	Citations      []string  `json:"citations,omitempty"` // cited URLs or domains
	ObservedAt     time.Time `json:"observed_at"`
}
