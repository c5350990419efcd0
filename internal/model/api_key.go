package model

import "time"

// APIKey is a client credential for the chat completion endpoint.
// The key value is generated server-side and never supplied by callers.
type APIKey struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Key         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"key"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UsageCount  int64     `gorm:"default:0;not null" json:"usage_count"`
}
