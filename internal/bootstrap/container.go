package bootstrap

import (
	"context"
	"log"

	"ai-contract-review-be/internal/config"
	"ai-contract-review-be/internal/controller"
	"ai-contract-review-be/internal/handler"
	"ai-contract-review-be/internal/pkg/logger"
	"ai-contract-review-be/internal/pkg/mailer"
	"ai-contract-review-be/internal/repository/memory"
	"ai-contract-review-be/internal/repository/unitofwork"
	"ai-contract-review-be/internal/service"
	"ai-contract-review-be/internal/websocket"
	"ai-contract-review-be/pkg/analysis"
	"ai-contract-review-be/pkg/embedding"
	"ai-contract-review-be/pkg/extract"
	"ai-contract-review-be/pkg/llm/factory"

	pkgNats "ai-contract-review-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ContractController controller.IContractController
	ChatController     controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, "")
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory cache for composed chat contexts
	contextCache := memory.NewContextCache()

	// 4. Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.AnalyzeContractTopic, pubSub)

	analyzerService := service.NewAnalyzerService(
		uowFactory,
		embeddingProvider,
		analysis.NewExtractor(llmProvider),
		extract.NewPlainTextExtractor(),
		cfg.Pipeline,
		natsPub,
		emailService,
		contextCache,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.AnalyzeContractTopic,
		analyzerService,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, cfg.App.JwtTTLHours)
	contractService := service.NewContractService(uowFactory, publisherService, cfg.App.UploadDir, sysLogger)
	chatService := service.NewChatService(uowFactory, llmProvider, contextCache, sysLogger)

	// 6. Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		ContractController: controller.NewContractController(contractService),
		ChatController:     controller.NewChatController(chatService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
