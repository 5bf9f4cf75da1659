package bootstrap

import (
	"time"

	"gemini-chat-be/internal/config"
	"gemini-chat-be/internal/controller"
	"gemini-chat-be/internal/pkg/logger"
	"gemini-chat-be/internal/repository/unitofwork"
	"gemini-chat-be/internal/service"
	"gemini-chat-be/pkg/gemini"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Upstream model client (built once, shared across requests)
	model := gemini.NewClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second,
	)

	// 3. Services
	authService := service.NewAuthService(
		uowFactory,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenExpirySeconds)*time.Second,
	)
	chatService := service.NewChatService(uowFactory, model, sysLogger)

	// 4. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService),
		Logger:         sysLogger,
	}
}
