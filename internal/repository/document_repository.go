package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docchat/internal/model"
)

// ErrDuplicateFilename is returned when a document with the same filename
// already exists in the chat. The composite unique index makes the check
// race-free under concurrent uploads.
var ErrDuplicateFilename = errors.New("filename already exists in chat")

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateWithChunks persists a document and all of its chunks atomically.
// A failure anywhere rolls the whole document back; a partially indexed
// document must never be retrievable.
func (r *DocumentRepository) CreateWithChunks(doc *model.Document, chunks []model.DocumentChunk) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
			chunks[i].ChatID = doc.ChatID
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.Create(&chunks).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateFilename
	}
	if err != nil {
		return fmt.Errorf("create document with chunks failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByChatID(chatID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("chat_id = ?", chatID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// Filenames returns the filenames already present in the chat, used to
// report duplicates per-file before extraction work is spent on them.
func (r *DocumentRepository) Filenames(chatID uint) ([]string, error) {
	var names []string
	if err := r.db.Model(&model.Document{}).Where("chat_id = ?", chatID).Pluck("filename", &names).Error; err != nil {
		return nil, fmt.Errorf("list document filenames failed: %w", err)
	}
	return names, nil
}

func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// DeleteWithChunks removes a document and its chunks in one transaction,
// chunks first so no chunk ever dangles without its document.
func (r *DocumentRepository) DeleteWithChunks(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentChunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete document with chunks failed: %w", err)
	}
	return nil
}
