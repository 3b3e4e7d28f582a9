package models

import "time"

// Event is the envelope written to and read from the event bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // dataset.loaded, filters.applied, filters.set, filters.reset
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
