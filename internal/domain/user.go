package domain

import "time"

type User struct {
	ID         int64          `json:"id"`
	Username   string         `json:"username"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
