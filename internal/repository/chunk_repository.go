package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docchat/internal/model"
	"docchat/internal/rag"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ListCandidates loads every chunk of the chat with its source filename.
// Scoping by chat_id here is a correctness requirement: a chunk from
// another chat must never become a retrieval candidate, no matter how
// close its vector is.
func (r *ChunkRepository) ListCandidates(chatID uint) ([]rag.Candidate, error) {
	var rows []struct {
		model.DocumentChunk
		Filename string
	}
	err := r.db.Model(&model.DocumentChunk{}).
		Select("document_chunks.*, documents.filename AS filename").
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("document_chunks.chat_id = ?", chatID).
		Order("document_chunks.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list chunk candidates failed: %w", err)
	}
	candidates := make([]rag.Candidate, 0, len(rows))
	for i := range rows {
		candidates = append(candidates, rag.Candidate{
			ChunkID:    rows[i].ID,
			DocumentID: rows[i].DocumentID,
			Content:    rows[i].Content,
			ChunkIndex: rows[i].ChunkIndex,
			Filename:   rows[i].Filename,
			Embedding:  rows[i].EmbeddingVector(),
		})
	}
	return candidates, nil
}

// ListFallback fetches up to limit chunks for the chat without the
// document join or any scoring input. Used only when the scored path
// cannot execute; order is arbitrary and the source filename unknown.
func (r *ChunkRepository) ListFallback(chatID uint, limit int) ([]rag.Candidate, error) {
	var chunks []model.DocumentChunk
	q := r.db.Where("chat_id = ?", chatID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list fallback chunks failed: %w", err)
	}
	candidates := make([]rag.Candidate, 0, len(chunks))
	for i := range chunks {
		candidates = append(candidates, rag.Candidate{
			ChunkID:    chunks[i].ID,
			DocumentID: chunks[i].DocumentID,
			Content:    chunks[i].Content,
			ChunkIndex: chunks[i].ChunkIndex,
		})
	}
	return candidates, nil
}
