package client

import (
	"context"
	"errors"

	"gemini-chat-be/internal/dto"
	"gemini-chat-be/internal/entity"

	"github.com/google/uuid"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrBusy means a prompt is already in flight. One outstanding prompt
	// at a time, enforced client-side.
	ErrBusy = errors.New("a prompt is already in flight")
)

// Conversation is the client's cached view of a chat thread. Id is nil for
// a locally started conversation the server has not assigned an id to yet.
type Conversation struct {
	Id      *uuid.UUID
	History []entity.Message
}

// Title is the sidebar label: the first words of the first turn,
// truncated on rune boundaries so multi-byte text is never split.
func (c *Conversation) Title() string {
	if len(c.History) == 0 || len(c.History[0].Parts) == 0 {
		return "New Chat..."
	}
	runes := []rune(c.History[0].Parts[0].Text)
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return string(runes)
}

// Session reconciles server responses into local state: the cached
// conversation list, the active selection and the in-flight flag.
type Session struct {
	api           *API
	conversations []*Conversation
	active        int
	busy          bool
}

func NewSession(api *API) *Session {
	return &Session{
		api:           api,
		conversations: []*Conversation{{}},
		active:        0,
	}
}

func (s *Session) LoggedIn() bool {
	return s.api.Token() != ""
}

func (s *Session) Conversations() []*Conversation {
	return s.conversations
}

func (s *Session) Active() *Conversation {
	return s.conversations[s.active]
}

func (s *Session) Busy() bool {
	return s.busy
}

func (s *Session) Register(ctx context.Context, email, password string) error {
	return s.api.Register(ctx, email, password)
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	return s.api.Login(ctx, email, password)
}

// Refresh replaces the cached list with the server's view and keeps one
// empty local conversation appended as the "new chat" slot.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	chats, err := s.api.Chats(ctx)
	if err != nil {
		return err
	}
	conversations := make([]*Conversation, 0, len(chats)+1)
	for i := range chats {
		id := chats[i].Id
		conversations = append(conversations, &Conversation{
			Id:      &id,
			History: chats[i].History,
		})
	}
	conversations = append(conversations, &Conversation{})
	s.conversations = conversations
	s.active = len(conversations) - 1
	return nil
}

// StartNew appends an empty local conversation and selects it.
func (s *Session) StartNew() {
	s.conversations = append(s.conversations, &Conversation{})
	s.active = len(s.conversations) - 1
}

// Select makes conversation i the active one.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.conversations) {
		return errors.New("no such conversation")
	}
	s.active = i
	return nil
}

// Send submits a prompt for the active conversation. When the server
// assigns an id to a conversation that only existed locally, the id is
// bound onto the cached copy so subsequent turns extend the same stored
// record instead of creating a new one each time.
func (s *Session) Send(ctx context.Context, prompt string) (*dto.SendChatResponse, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true
	defer func() { s.busy = false }()

	current := s.Active()
	res, err := s.api.Send(ctx, prompt, current.Id)
	if err != nil {
		return nil, err
	}

	if current.Id == nil {
		id := res.ConversationId
		current.Id = &id
	}
	current.History = res.History
	return res, nil
}
