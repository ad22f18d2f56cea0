package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/internal/app"
	"docchat/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // per file

type RAGHandler struct {
	ragService *app.RAGService
}

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

type SuggestTitleRequest struct {
	Message string `json:"message" binding:"required"`
}

func NewRAGHandler(ragService *app.RAGService) *RAGHandler {
	return &RAGHandler{ragService: ragService}
}

// UploadDocuments accepts a multipart form with one or more "files"
// entries and ingests each into the chat. Per-file failures land in the
// skip list; the batch itself only fails on malformed requests.
func (h *RAGHandler) UploadDocuments(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files provided")
		return
	}

	files := make([]app.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size > maxUploadSize {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB): "+fh.Filename)
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file: "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file: "+fh.Filename)
			return
		}
		files = append(files, app.UploadFile{Filename: fh.Filename, Data: data})
	}

	// Ingestion keeps running if the uploader disconnects; the documents
	// are either fully indexed or not at all either way.
	result, err := h.ragService.Upload(context.WithoutCancel(c.Request.Context()), chatID, files)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *RAGHandler) Query(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	// The exchange is recorded even if the caller disconnects mid-generation.
	result, err := h.ragService.Query(context.WithoutCancel(c.Request.Context()), chatID, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrEmbedding):
			response.Error(c, http.StatusBadGateway, response.CodeEmbeddingFailed, "query embedding failed")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *RAGHandler) ListDocuments(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}
	docs, err := h.ragService.ListDocuments(chatID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		}
		return
	}
	response.OK(c, docs)
}

func (h *RAGHandler) DeleteDocument(c *gin.Context) {
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.ragService.DeleteDocument(docID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

// SuggestTitle returns a model-generated title for the chat based on a
// seed message. Callers decide whether to apply it.
func (h *RAGHandler) SuggestTitle(c *gin.Context) {
	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}
	var req SuggestTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	title, err := h.ragService.SuggestTitle(c.Request.Context(), chatID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "title generation failed")
		}
		return
	}
	response.OK(c, gin.H{"title": title})
}
