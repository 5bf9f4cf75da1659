package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gemini-chat-be/internal/dto"
	"gemini-chat-be/internal/entity"
	"gemini-chat-be/internal/history"
	"gemini-chat-be/internal/pkg/logger"
	"gemini-chat-be/internal/repository/contract"
	"gemini-chat-be/internal/repository/specification"
	"gemini-chat-be/internal/repository/unitofwork"
	"gemini-chat-be/pkg/gemini"

	"github.com/google/uuid"
)

// ErrConversationNotFound covers both a missing id and an id owned by
// someone else. The caller cannot tell the two apart.
var ErrConversationNotFound = errors.New("conversation not found")

// UpstreamError wraps a failed model call so the request boundary can map
// it to a 500 while keeping the provider message for diagnostics.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	ListConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	model      gemini.ChatModel
	logger     logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, model gemini.ChatModel, sysLogger logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		model:      model,
		logger:     sysLogger,
	}
}

// SendChat is a complete stateless round trip: resolve the conversation,
// snapshot its history, call the model, normalize, persist, respond.
// History is only written after the model call succeeds, so an upstream
// failure is safely retryable by the client.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	// 1. Resolve conversation
	conversation, err := s.loadOrCreate(ctx, repo, userId, req.ConversationId)
	if err != nil {
		return nil, err
	}

	// 2. Snapshot history as an independent copy; the model call must not
	// alias into the stored record.
	snapshot := history.ToContents(conversation.History)

	// 3. Invoke model
	result, err := s.model.SendMessage(ctx, snapshot, req.Prompt)
	if err != nil {
		s.logger.Error("chat", "model call failed", map[string]interface{}{
			"conversation_id": conversation.Id,
			"error":           err.Error(),
		})
		return nil, &UpstreamError{Err: err}
	}

	// 4. Normalize result. The model returns prompt+reply appended to the
	// snapshot it was given, so the stored history is replaced, not
	// appended to.
	normalized, err := history.FromContents(result.History)
	if err != nil {
		return nil, fmt.Errorf("normalizing model history: %w", err)
	}
	conversation.History = normalized

	// 5. Persist
	if err := repo.Update(ctx, conversation); err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		Reply:          result.Reply,
		History:        conversation.History,
		ConversationId: conversation.Id,
	}, nil
}

func (s *chatService) ListConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, len(conversations))
	for i, c := range conversations {
		res[i] = &dto.ConversationResponse{
			Id:        c.Id,
			History:   c.History,
			CreatedAt: c.CreatedAt,
		}
	}
	return res, nil
}

// loadOrCreate fetches the conversation when an id is supplied, but only if
// it belongs to userId. Without an id it creates and immediately persists a
// fresh empty conversation; if the model call afterwards fails, the empty
// record stays behind, which is harmless.
func (s *chatService) loadOrCreate(ctx context.Context, repo contract.ConversationRepository, userId uuid.UUID, conversationId *uuid.UUID) (*entity.Conversation, error) {
	if conversationId != nil {
		conversation, err := repo.FindOne(ctx,
			specification.ByID{ID: *conversationId},
			specification.OwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, ErrConversationNotFound
		}
		return conversation, nil
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		History:   []entity.Message{},
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}
