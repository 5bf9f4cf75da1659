package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"gemini-chat-be/internal/dto"
	"gemini-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend mimics the server's wire surface closely enough for the
// session to run against: one token, one stored conversation per send.
type fakeBackend struct {
	token    string
	assigned uuid.UUID
	requests []dto.SendChatRequest
	stored   []dto.ConversationResponse

	// when set, /api/chat blocks until released is closed
	entered  chan struct{}
	released chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		token:    "signed-claim",
		assigned: uuid.New(),
	}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.AuthResponse{Token: f.token, Email: "a@b.com"})
	})
	mux.HandleFunc("/api/chats", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != f.token {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "No token, authorization denied"})
			return
		}
		json.NewEncoder(w).Encode(f.stored)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != f.token {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "No token, authorization denied"})
			return
		}
		var req dto.SendChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.requests = append(f.requests, req)

		if f.entered != nil {
			close(f.entered)
			f.entered = nil
			<-f.released
		}

		id := f.assigned
		if req.ConversationId != nil {
			id = *req.ConversationId
		}
		history := []entity.Message{
			{Role: entity.RoleUser, Parts: []entity.Part{{Text: req.Prompt}}},
			{Role: entity.RoleModel, Parts: []entity.Part{{Text: "reply to " + req.Prompt}}},
		}
		json.NewEncoder(w).Encode(dto.SendChatResponse{
			Reply:          "reply to " + req.Prompt,
			History:        history,
			ConversationId: id,
		})
	})
	return mux
}

func newTestSession(t *testing.T, backend *fakeBackend) *Session {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	session := NewSession(NewAPI(srv.URL))
	require.NoError(t, session.Login(context.Background(), "a@b.com", "password"))
	return session
}

func TestSendRequiresLogin(t *testing.T) {
	session := NewSession(NewAPI("http://127.0.0.1:0"))

	_, err := session.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSendBindsAssignedId(t *testing.T) {
	backend := newFakeBackend()
	session := newTestSession(t, backend)

	require.Nil(t, session.Active().Id)

	res, err := session.Send(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "reply to first", res.Reply)
	require.NotNil(t, session.Active().Id)
	assert.Equal(t, backend.assigned, *session.Active().Id)
	assert.Len(t, session.Active().History, 2)

	// the second turn must carry the bound id, not open a new record
	_, err = session.Send(context.Background(), "second")
	require.NoError(t, err)
	require.Len(t, backend.requests, 2)
	assert.Nil(t, backend.requests[0].ConversationId)
	require.NotNil(t, backend.requests[1].ConversationId)
	assert.Equal(t, backend.assigned, *backend.requests[1].ConversationId)
}

func TestSendRejectsConcurrentPrompt(t *testing.T) {
	backend := newFakeBackend()
	backend.entered = make(chan struct{})
	backend.released = make(chan struct{})
	session := newTestSession(t, backend)

	entered := backend.entered
	done := make(chan error, 1)
	go func() {
		_, err := session.Send(context.Background(), "slow")
		done <- err
	}()

	<-entered
	_, err := session.Send(context.Background(), "eager")
	assert.ErrorIs(t, err, ErrBusy)

	close(backend.released)
	require.NoError(t, <-done)
	assert.False(t, session.Busy())
}

func TestRefreshKeepsNewChatSlot(t *testing.T) {
	backend := newFakeBackend()
	stored := uuid.New()
	backend.stored = []dto.ConversationResponse{
		{
			Id: stored,
			History: []entity.Message{
				{Role: entity.RoleUser, Parts: []entity.Part{{Text: "earlier prompt"}}},
				{Role: entity.RoleModel, Parts: []entity.Part{{Text: "earlier reply"}}},
			},
		},
	}
	session := newTestSession(t, backend)

	require.NoError(t, session.Refresh(context.Background()))

	conversations := session.Conversations()
	require.Len(t, conversations, 2)
	require.NotNil(t, conversations[0].Id)
	assert.Equal(t, stored, *conversations[0].Id)
	assert.Equal(t, "earlier prompt", conversations[0].Title())

	// the trailing slot is the empty "new chat" and is the active one
	assert.Nil(t, conversations[1].Id)
	assert.Equal(t, "New Chat...", conversations[1].Title())
	assert.Same(t, conversations[1], session.Active())
}

func TestConversationTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty conversation",
			text: "",
			want: "New Chat...",
		},
		{
			name: "short prompt kept whole",
			text: "hello",
			want: "hello",
		},
		{
			name: "long prompt truncated",
			text: strings.Repeat("a", 40),
			want: strings.Repeat("a", 30),
		},
		{
			name: "multi-byte prompt truncated on rune boundary",
			text: strings.Repeat("日", 40),
			want: strings.Repeat("日", 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Conversation{}
			if tt.text != "" {
				c.History = []entity.Message{
					{Role: entity.RoleUser, Parts: []entity.Part{{Text: tt.text}}},
				}
			}

			title := c.Title()
			assert.Equal(t, tt.want, title)
			assert.True(t, utf8.ValidString(title))
		})
	}
}

func TestServerErrorsSurface(t *testing.T) {
	backend := newFakeBackend()
	session := newTestSession(t, backend)

	backend.token = "rotated"

	_, err := session.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No token, authorization denied")
	assert.Nil(t, session.Active().Id)
}
