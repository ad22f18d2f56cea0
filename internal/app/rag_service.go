package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/model"
	"docchat/internal/pkg/extract"
	"docchat/internal/rag"
	"docchat/internal/repository"
)

const defaultTopK = 5

// NoDocumentsResponse is returned verbatim when a chat has nothing
// indexed; the generator is never invoked and no message is recorded.
const NoDocumentsResponse = "I don't have any documents uploaded for this chat yet. Please upload some documents first to ask questions about them."

const duplicateFilenameReason = "File already exists in this chat"

// DocumentStore persists documents together with their chunks.
type DocumentStore interface {
	CreateWithChunks(doc *model.Document, chunks []model.DocumentChunk) error
	ListByChatID(chatID uint) ([]model.Document, error)
	Filenames(chatID uint) ([]string, error)
	GetByID(id uint) (*model.Document, error)
	DeleteWithChunks(id uint) error
}

// ChunkStore serves retrieval candidates scoped to one chat.
type ChunkStore interface {
	ListCandidates(chatID uint) ([]rag.Candidate, error)
	ListFallback(chatID uint, limit int) ([]rag.Candidate, error)
}

// Embedder maps text to a fixed-width vector. The production
// implementation is the bounded worker pool around the embedding client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces grounded answers and chat titles.
type Generator interface {
	Generate(ctx context.Context, query string, retrieved []rag.Result) (string, error)
	GenerateTitle(ctx context.Context, seedMessage string) string
}

// EventPublisher emits best-effort usage events. Optional.
type EventPublisher interface {
	Publish(ctx context.Context, event model.UsageEvent) error
}

// RAGService orchestrates the two core flows: ingestion
// (extract → chunk → embed → index) and query
// (embed → scoped search → generate → persist).
type RAGService struct {
	chats     ChatStore
	documents DocumentStore
	chunks    ChunkStore
	messages  MessageStore
	embedder  Embedder
	generator Generator
	publisher EventPublisher
	history   MessageCache
	chunker   *rag.Chunker
	topK      int
	logger    *zap.Logger
}

type RAGServiceParams struct {
	Chats     ChatStore
	Documents DocumentStore
	Chunks    ChunkStore
	Messages  MessageStore
	Embedder  Embedder
	Generator Generator
	Publisher EventPublisher
	History   MessageCache
	Chunker   *rag.Chunker
	TopK      int
	Logger    *zap.Logger
}

func NewRAGService(p RAGServiceParams) *RAGService {
	if p.Chunker == nil {
		p.Chunker = rag.NewChunker(rag.DefaultMaxChunkSize, rag.DefaultChunkOverlap)
	}
	if p.TopK <= 0 {
		p.TopK = defaultTopK
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &RAGService{
		chats:     p.Chats,
		documents: p.Documents,
		chunks:    p.Chunks,
		messages:  p.Messages,
		embedder:  p.Embedder,
		generator: p.Generator,
		publisher: p.Publisher,
		history:   p.History,
		chunker:   p.Chunker,
		topK:      p.TopK,
		logger:    p.Logger,
	}
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Filename string
	Data     []byte
}

type UploadedDocument struct {
	ID         uint   `json:"id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

type SkippedDocument struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type UploadResult struct {
	Uploaded []UploadedDocument `json:"uploaded"`
	Skipped  []SkippedDocument  `json:"skipped"`
}

// Upload ingests a batch of files into the chat. Each file either lands
// fully indexed or appears in the skip list with a reason; one bad file
// never aborts its siblings.
func (s *RAGService) Upload(ctx context.Context, chatID uint, files []UploadFile) (*UploadResult, error) {
	if chatID == 0 || len(files) == 0 {
		return nil, ErrInvalidInput
	}
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	existingNames, err := s.documents.Filenames(chatID)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(existingNames))
	for _, name := range existingNames {
		existing[name] = true
	}

	result := &UploadResult{
		Uploaded: []UploadedDocument{},
		Skipped:  []SkippedDocument{},
	}
	for _, file := range files {
		if existing[file.Filename] {
			result.Skipped = append(result.Skipped, SkippedDocument{
				Filename: file.Filename,
				Reason:   duplicateFilenameReason,
			})
			continue
		}

		doc, chunkCount, err := s.ingestFile(ctx, chatID, file)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedDocument{
				Filename: file.Filename,
				Reason:   skipReason(err),
			})
			continue
		}

		existing[file.Filename] = true
		result.Uploaded = append(result.Uploaded, UploadedDocument{
			ID:         doc.ID,
			Filename:   doc.Filename,
			ChunkCount: chunkCount,
		})
		s.publishEvent(ctx, chatID, model.UsageDocumentIngested, file.Filename)
	}
	return result, nil
}

// ingestFile runs extract → chunk → embed → index for one file. The
// document and all of its chunks are persisted in one transaction, so an
// embedding failure partway through leaves nothing behind.
func (s *RAGService) ingestFile(ctx context.Context, chatID uint, file UploadFile) (*model.Document, int, error) {
	text, err := extract.Text(file.Filename, file.Data)
	if err != nil {
		return nil, 0, err
	}
	pieces := s.chunker.Split(text)
	if len(pieces) == 0 {
		return nil, 0, errors.New("no extractable text")
	}

	chunks := make([]model.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		vec, err := s.embedder.Embed(ctx, piece)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		chunks[i] = model.DocumentChunk{
			ChatID:     chatID,
			Content:    piece,
			ChunkIndex: i,
		}
		chunks[i].SetEmbedding(vec)
	}

	doc := &model.Document{
		ChatID:   chatID,
		Filename: file.Filename,
		Content:  text,
	}
	if err := s.documents.CreateWithChunks(doc, chunks); err != nil {
		return nil, 0, err
	}
	return doc, len(chunks), nil
}

type QueryResult struct {
	Query    string `json:"query"`
	Response string `json:"response"`
	Sources  int    `json:"sources"`
}

// Query answers a question from the chat's documents. Zero indexed chunks
// short-circuits with the fixed no-documents response and records
// nothing; otherwise the exchange is persisted together with the chat's
// updated_at bump.
func (s *RAGService) Query(ctx context.Context, chatID uint, query string) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if chatID == 0 || query == "" {
		return nil, ErrInvalidInput
	}
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	retrieved, err := s.retrieve(chatID, queryVec)
	if err != nil {
		return nil, err
	}
	if len(retrieved) == 0 {
		return &QueryResult{Query: query, Response: NoDocumentsResponse, Sources: 0}, nil
	}

	answer, err := s.generator.Generate(ctx, query, retrieved)
	if err != nil {
		s.logger.Warn("answer generation failed", zap.Uint("chat_id", chatID), zap.Error(err))
		answer = Apology(err)
	}

	msg := &model.ChatMessage{
		ChatID:   chatID,
		Message:  query,
		Response: answer,
	}
	if err := s.messages.SaveExchange(msg); err != nil {
		return nil, err
	}
	if s.history != nil {
		if err := s.history.Invalidate(ctx, chatID); err != nil {
			s.logger.Warn("invalidate history cache failed", zap.Uint("chat_id", chatID), zap.Error(err))
		}
	}
	s.publishEvent(ctx, chatID, model.UsageQueryAnswered, query)

	return &QueryResult{Query: query, Response: answer, Sources: len(retrieved)}, nil
}

// retrieve runs the scoped similarity search, degrading to the unscored
// fallback when the primary scan cannot execute. Availability wins over
// relevance on that path; the sentinel score marks the results as
// best-effort.
func (s *RAGService) retrieve(chatID uint, queryVec []float32) ([]rag.Result, error) {
	candidates, err := s.chunks.ListCandidates(chatID)
	if err == nil {
		return rag.Rank(queryVec, candidates, s.topK), nil
	}
	s.logger.Warn("similarity search unavailable, using fallback", zap.Uint("chat_id", chatID), zap.Error(err))

	fallback, fbErr := s.chunks.ListFallback(chatID, s.topK)
	if fbErr != nil {
		return nil, fmt.Errorf("retrieval failed: %w", fbErr)
	}
	return rag.FallbackResults(fallback, s.topK), nil
}

// ListDocuments returns the chat's documents, newest first.
func (s *RAGService) ListDocuments(chatID uint) ([]model.Document, error) {
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
	return s.documents.ListByChatID(chatID)
}

// DeleteDocument removes a document and its chunks (chunks first, one
// transaction in the store).
func (s *RAGService) DeleteDocument(documentID uint) error {
	if documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.documents.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	return s.documents.DeleteWithChunks(documentID)
}

// SuggestTitle produces a chat title from a seed message. The capability
// is exposed on demand only; nothing triggers it automatically.
func (s *RAGService) SuggestTitle(ctx context.Context, chatID uint, seedMessage string) (string, error) {
	seedMessage = strings.TrimSpace(seedMessage)
	if chatID == 0 || seedMessage == "" {
		return "", ErrInvalidInput
	}
	chat, err := s.chats.GetByID(chatID)
	if err != nil {
		return "", err
	}
	if chat == nil {
		return "", ErrChatNotFound
	}
	return s.generator.GenerateTitle(ctx, seedMessage), nil
}

func (s *RAGService) publishEvent(ctx context.Context, chatID uint, kind, detail string) {
	if s.publisher == nil {
		return
	}
	event := model.UsageEvent{ChatID: chatID, Kind: kind, Detail: truncateDetail(detail)}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish usage event failed", zap.String("kind", kind), zap.Error(err))
	}
}

func truncateDetail(detail string) string {
	const maxDetail = 512
	if len(detail) <= maxDetail {
		return detail
	}
	return detail[:maxDetail]
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "Unsupported file type"
	case errors.Is(err, repository.ErrDuplicateFilename):
		return duplicateFilenameReason
	default:
		return err.Error()
	}
}
