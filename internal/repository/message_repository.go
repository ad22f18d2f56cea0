package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"docchat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) ListByChatID(chatID uint) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("chat_id = ?", chatID).Order("created_at").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	return messages, nil
}

// SaveExchange records a query/answer pair and bumps the owning chat's
// updated_at in the same transaction. Either both land or neither does.
func (r *MessageRepository) SaveExchange(msg *model.ChatMessage) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Chat{}).
			Where("id = ?", msg.ChatID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return fmt.Errorf("save chat exchange failed: %w", err)
	}
	return nil
}
