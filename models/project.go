package models

import (
	"encoding/json"
	"time"
)

// Project represents the structure of a project in the database.
type Project struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     string          `json:"status,omitempty"`
	VideoURL   *string         `json:"video_url,omitempty"`
	ZoomConfig json.RawMessage `json:"zoom_config,omitempty"` // JSON object, or a string holding one
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
