package model

import "time"

// Document holds one uploaded file's extracted text. Filename is unique
// within its chat; duplicate uploads are skipped, never overwritten.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index;uniqueIndex:idx_chat_filename" json:"chat_id"`
	Filename  string    `gorm:"size:255;not null;uniqueIndex:idx_chat_filename" json:"filename"`
	Content   string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
