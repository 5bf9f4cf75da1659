package mapper

import (
	"encoding/json"

	"gemini-chat-be/internal/entity"
	"gemini-chat-be/internal/model"
)

// ConversationMapper translates between the domain conversation and the
// persistence model, where history lives as a single JSONB blob.
type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) (*model.Conversation, error) {
	if c == nil {
		return nil, nil
	}
	history := c.History
	if history == nil {
		history = []entity.Message{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}
	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		History:   raw,
		CreatedAt: c.CreatedAt,
	}, nil
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) (*entity.Conversation, error) {
	if c == nil {
		return nil, nil
	}
	history := []entity.Message{}
	if len(c.History) > 0 {
		if err := json.Unmarshal(c.History, &history); err != nil {
			return nil, err
		}
	}
	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		History:   history,
		CreatedAt: c.CreatedAt,
	}, nil
}

func (m *ConversationMapper) ToEntities(models []*model.Conversation) ([]*entity.Conversation, error) {
	entities := make([]*entity.Conversation, len(models))
	for i, c := range models {
		e, err := m.ToEntity(c)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
