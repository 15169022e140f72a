package bootstrap

import (
	"context"
	"log"
	"time"

	"run-coach-be/internal/config"
	"run-coach-be/internal/controller"
	"run-coach-be/internal/handler"
	"run-coach-be/internal/pkg/logger"
	"run-coach-be/internal/pkg/mailer"
	"run-coach-be/internal/repository/memory"
	"run-coach-be/internal/repository/unitofwork"
	"run-coach-be/internal/service"
	internalWS "run-coach-be/internal/websocket"
	"run-coach-be/pkg/coach/gateway"
	"run-coach-be/pkg/llm/factory"

	pktNats "run-coach-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const summarizeTopic = "summarize_jobs"

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	ProfileController controller.IProfileController
	ChatController    controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *internalWS.Hub
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

	// Model provider
	llmProvider, err := factory.NewProvider(factory.ProviderConfig{
		Provider:  cfg.LLM.Provider,
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		ModelName: cfg.LLM.ModelName,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.LLM.Provider, cfg.LLM.ModelName)
	modelGateway := gateway.New(llmProvider)

	// In-memory session storage
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Coach.DebounceMs) * time.Millisecond)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
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
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := internalWS.NewHub(rdb, wsLogger)
	go wsHub.Run()
	presenter := internalWS.NewPresenter(wsHub)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, summarizeTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		summarizeTopic,
		uowFactory,
		modelGateway,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	oauthService := service.NewOAuthService(uowFactory)
	profileService := service.NewProfileService(uowFactory, natsPub)

	chatService := service.NewChatService(
		uowFactory,
		sessionRepo,
		modelGateway,
		presenter,
		publisherService,
		natsPub,
		sysLogger,
		service.ChatConfig{
			RecentWindow:  cfg.Coach.RecentWindow,
			SummaryBatchN: cfg.Coach.SummaryBatchN,
			SummaryIdle:   time.Duration(cfg.Coach.SummaryIdleMs) * time.Millisecond,
			RevealDelay:   time.Duration(cfg.Coach.RevealDelayMs) * time.Millisecond,
		},
	)

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		OAuthController:   controller.NewOAuthController(oauthService),
		ProfileController: controller.NewProfileController(profileService),
		ChatController:    controller.NewChatController(chatService),

		ConsumerService: consumerService,

		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,
	}
}
