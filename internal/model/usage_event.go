package model

import "time"

// Usage event kinds published after successful operations.
const (
	UsageDocumentIngested = "document_ingested"
	UsageQueryAnswered    = "query_answered"
)

// UsageEvent is a best-effort audit record. Events travel through the
// message queue and are persisted by a background worker; they are never
// part of the transactions that back the core flows.
type UsageEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	Kind      string    `gorm:"size:32;not null;index" json:"kind"`
	Detail    string    `gorm:"size:512" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
