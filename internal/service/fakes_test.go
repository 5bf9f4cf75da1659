package service

import (
	"context"
	"errors"
	"sort"

	"gemini-chat-be/internal/entity"
	"gemini-chat-be/internal/repository/contract"
	"gemini-chat-be/internal/repository/specification"
	"gemini-chat-be/internal/repository/unitofwork"
	"gemini-chat-be/pkg/gemini"

	"github.com/google/uuid"
)

// In-memory fakes standing in for the gorm-backed repositories. They
// interpret the specification types the services actually use.

type fakeStore struct {
	users         map[uuid.UUID]entity.User
	conversations map[uuid.UUID]entity.Conversation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[uuid.UUID]entity.User),
		conversations: make(map[uuid.UUID]entity.Conversation),
	}
}

type fakeFactory struct {
	store *fakeStore
	last  *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	f.last = &fakeUnitOfWork{store: f.store}
	return f.last
}

func newFakeFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeFactory{store: store}
}

type fakeUnitOfWork struct {
	store      *fakeStore
	begun      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.begun = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.rolledBack = true
	return nil
}

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepository{store: u.store}
}

func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepository{store: u.store}
}

type fakeUserRepository struct {
	store *fakeStore
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	r.store.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			count++
		}
	}
	return count, nil
}

func userMatches(u entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByEmail:
			if u.Email != s.Email {
				return false
			}
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		}
	}
	return true
}

type fakeConversationRepository struct {
	store *fakeStore
}

func (r *fakeConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.store.conversations[conversation.Id] = cloneConversation(*conversation)
	return nil
}

func (r *fakeConversationRepository) Update(ctx context.Context, conversation *entity.Conversation) error {
	r.store.conversations[conversation.Id] = cloneConversation(*conversation)
	return nil
}

func (r *fakeConversationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			found := cloneConversation(c)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var result []*entity.Conversation
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			found := cloneConversation(c)
			result = append(result, &found)
		}
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok && s.Field == "created_at" {
			sort.Slice(result, func(i, j int) bool {
				if s.Desc {
					return result[i].CreatedAt.After(result[j].CreatedAt)
				}
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			})
		}
	}
	return result, nil
}

func conversationMatches(c entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if c.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

func cloneConversation(c entity.Conversation) entity.Conversation {
	history := make([]entity.Message, len(c.History))
	for i, msg := range c.History {
		parts := make([]entity.Part, len(msg.Parts))
		copy(parts, msg.Parts)
		history[i] = entity.Message{Role: msg.Role, Parts: parts}
	}
	c.History = history
	return c
}

// fakeChatModel echoes a canned reply, appending the user turn and the
// model turn to the history it was given, the way the real client does.
type fakeChatModel struct {
	reply string
	err   error
	calls int
}

func (m *fakeChatModel) SendMessage(ctx context.Context, history []*gemini.Content, prompt string) (*gemini.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	updated := make([]*gemini.Content, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		&gemini.Content{Role: gemini.RoleUser, Parts: []*gemini.Part{{Text: prompt}}},
		&gemini.Content{Role: gemini.RoleModel, Parts: []*gemini.Part{{Text: m.reply}}},
	)
	return &gemini.Result{Reply: m.reply, History: updated}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
