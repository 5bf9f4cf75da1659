package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gemini-chat-be/internal/dto"

	"github.com/google/uuid"
)

const tokenHeader = "X-Auth-Token"

// API is a thin HTTP wrapper around the chat backend. It holds the signed
// claim after Register/Login; an empty token means logged out.
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Token returns the current claim, empty when logged out.
func (a *API) Token() string {
	return a.token
}

func (a *API) Register(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, "/api/register", email, password)
}

func (a *API) Login(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, "/api/login", email, password)
}

func (a *API) authenticate(ctx context.Context, path, email, password string) error {
	var res dto.AuthResponse
	err := a.post(ctx, path, dto.RegisterRequest{Email: email, Password: password}, &res)
	if err != nil {
		return err
	}
	a.token = res.Token
	return nil
}

func (a *API) Chats(ctx context.Context) ([]dto.ConversationResponse, error) {
	var res []dto.ConversationResponse
	if err := a.get(ctx, "/api/chats", &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *API) Send(ctx context.Context, prompt string, conversationId *uuid.UUID) (*dto.SendChatResponse, error) {
	var res dto.SendChatResponse
	req := dto.SendChatRequest{Prompt: prompt, ConversationId: conversationId}
	if err := a.post(ctx, "/api/chat", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *API) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *API) do(req *http.Request, out interface{}) error {
	if a.token != "" {
		req.Header.Set(tokenHeader, a.token)
	}

	res, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		return apiError(res.StatusCode, resBody)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(resBody, out)
}

func apiError(status int, body []byte) error {
	var e struct {
		Msg   string `json:"msg"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Msg != "" {
			return fmt.Errorf("server returned %d: %s", status, e.Msg)
		}
		if e.Error != "" {
			return fmt.Errorf("server returned %d: %s", status, e.Error)
		}
	}
	return fmt.Errorf("server returned %d", status)
}
