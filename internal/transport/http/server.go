package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "docchat/internal/app"
	"docchat/internal/bootstrap"
	"docchat/internal/cache"
	"docchat/internal/repository"
	"docchat/internal/transport/http/handler"
	"docchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Logger), gin.Recovery())

	chatRepo := repository.NewChatRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(app.Redis, time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second)

	chatService := appsvc.NewChatService(chatRepo, messageRepo, historyCache, app.Logger)
	ragService := appsvc.NewRAGService(appsvc.RAGServiceParams{
		Chats:     chatRepo,
		Documents: docRepo,
		Chunks:    chunkRepo,
		Messages:  messageRepo,
		Embedder:  app.EmbedPool,
		Generator: app.Generator,
		Publisher: app.EventPublisher,
		History:   historyCache,
		Chunker:   app.Chunker,
		TopK:      app.Config.RAG.TopK,
		Logger:    app.Logger,
	})

	healthHandler := handler.NewHealthHandler(app)
	chatHandler := handler.NewChatHandler(chatService)
	ragHandler := handler.NewRAGHandler(ragService)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")
	v1.POST("/chats", chatHandler.CreateChat)
	v1.GET("/chats", chatHandler.ListChats)
	v1.DELETE("/chats/:id", chatHandler.DeleteChat)
	v1.GET("/chats/:id/messages", chatHandler.ListMessages)
	v1.GET("/chats/:id/documents", ragHandler.ListDocuments)
	v1.POST("/chats/:id/documents", ragHandler.UploadDocuments)
	v1.POST("/chats/:id/query", ragHandler.Query)
	v1.POST("/chats/:id/title", ragHandler.SuggestTitle)
	v1.DELETE("/documents/:id", ragHandler.DeleteDocument)

	return router
}
