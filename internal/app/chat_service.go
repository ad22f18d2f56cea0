package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/model"
)

// ChatStore is the persistence surface for chats.
type ChatStore interface {
	Create(chat *model.Chat) error
	List() ([]model.Chat, error)
	GetByID(id uint) (*model.Chat, error)
	DeleteCascade(chatID uint) error
}

// MessageStore persists query/answer exchanges. SaveExchange commits the
// message and the chat's updated_at bump together.
type MessageStore interface {
	ListByChatID(chatID uint) ([]model.ChatMessage, error)
	SaveExchange(msg *model.ChatMessage) error
}

// MessageCache is the read-through cache for chat histories. Optional;
// all methods tolerate being skipped.
type MessageCache interface {
	Get(ctx context.Context, chatID uint) ([]model.ChatMessage, bool, error)
	Set(ctx context.Context, chatID uint, messages []model.ChatMessage) error
	Invalidate(ctx context.Context, chatID uint) error
}

type ChatService struct {
	chats    ChatStore
	messages MessageStore
	history  MessageCache
	logger   *zap.Logger
}

func NewChatService(chats ChatStore, messages MessageStore, history MessageCache, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		chats:    chats,
		messages: messages,
		history:  history,
		logger:   logger,
	}
}

func (s *ChatService) CreateChat(title string) (*model.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Chat"
	}
	chat := &model.Chat{Title: title}
	if err := s.chats.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats() ([]model.Chat, error) {
	return s.chats.List()
}

// DeleteChat removes the chat and everything it owns. The cascade is a
// single transaction in the store.
func (s *ChatService) DeleteChat(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return ErrInvalidInput
	}
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}
	if err := s.chats.DeleteCascade(chatID); err != nil {
		return err
	}
	if s.history != nil {
		if err := s.history.Invalidate(ctx, chatID); err != nil {
			s.logger.Warn("invalidate history cache failed", zap.Uint("chat_id", chatID), zap.Error(err))
		}
	}
	return nil
}

// ListMessages returns the chat's history oldest first, served from the
// cache when warm.
func (s *ChatService) ListMessages(ctx context.Context, chatID uint) ([]model.ChatMessage, error) {
	if chatID == 0 {
		return nil, ErrInvalidInput
	}
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	if s.history != nil {
		if cached, hit, cacheErr := s.history.Get(ctx, chatID); cacheErr == nil && hit {
			return cached, nil
		}
	}

	messages, err := s.messages.ListByChatID(chatID)
	if err != nil {
		return nil, err
	}
	if s.history != nil {
		if err := s.history.Set(ctx, chatID, messages); err != nil {
			s.logger.Warn("set history cache failed", zap.Uint("chat_id", chatID), zap.Error(err))
		}
	}
	return messages, nil
}
