package domain

import (
	"strings"
	"time"
)

// Tag labels vendors and packages; budget categories are seeded tags
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeTagName trims and lowercases a tag name
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
