package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"docchat/internal/ai"
	"docchat/internal/app"
	"docchat/internal/config"
	"docchat/internal/model"
	mysqlClient "docchat/internal/platform/mysql"
	rabbitmqClient "docchat/internal/platform/rabbitmq"
	redisClient "docchat/internal/platform/redis"
	"docchat/internal/rag"
	"docchat/internal/repository"
	"docchat/internal/worker"
)

// App wires the process-wide singletons: storage clients, the shared
// model clients, the bounded embedding pool and the usage event worker.
// Everything here is constructed once at startup and injected downward.
type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	EventPublisher *rabbitmqClient.EventPublisher
	UsageWorker    *worker.UsageEventWorker
	EmbedPool      *worker.EmbedPool
	Generator      *app.AnswerGenerator
	Chunker        *rag.Chunker

	StartedAt time.Time
}

func New(ctx context.Context, logger *zap.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Chat{},
		&model.Document{},
		&model.DocumentChunk{},
		&model.ChatMessage{},
		&model.UsageEvent{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	publisher := rabbitmqClient.NewEventPublisher(mqConn, cfg.RabbitMQ.UsageEventQueue)
	usageRepo := repository.NewUsageEventRepository(mysqlDB)
	usageWorker := worker.NewUsageEventWorker(mqConn, usageRepo, cfg.RabbitMQ.UsageEventQueue, logger)
	if err := usageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start usage event worker failed: %w", err)
	}

	aiClient := ai.NewClient()
	embedCfg := ai.EmbeddingConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
	}
	embedPool := worker.NewEmbedPool(cfg.Embedding.PoolWorkers, func(ctx context.Context, text string) ([]float32, error) {
		return aiClient.Embed(ctx, embedCfg, text)
	})

	generator := app.NewAnswerGenerator(aiClient, ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})

	return &App{
		Config:         cfg,
		Logger:         logger,
		MySQL:          mysqlDB,
		Redis:          redisCli,
		MQConn:         mqConn,
		EventPublisher: publisher,
		UsageWorker:    usageWorker,
		EmbedPool:      embedPool,
		Generator:      generator,
		Chunker:        rag.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.UsageWorker != nil {
		a.UsageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
