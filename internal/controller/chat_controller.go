package controller

import (
	"errors"

	"gemini-chat-be/internal/dto"
	"gemini-chat-be/internal/pkg/serverutils"
	"gemini-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Send(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	r.Get("/chats", authMiddleware, c.List)
	r.Post("/chat", authMiddleware, c.Send)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Token is not valid"})
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "invalid request body"})
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": err.Error()})
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": err.Error()})
		}
		var upstream *service.UpstreamError
		if errors.As(err, &upstream) {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": upstream.Error()})
		}
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	userId, err := callerUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Token is not valid"})
	}

	res, err := c.chatService.ListConversations(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func callerUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, errors.New("missing user id")
	}
	return uuid.Parse(userIdStr)
}
