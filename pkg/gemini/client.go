package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role"`
}

type generateRequest struct {
	Contents []*Content `json:"contents"`
}

type candidate struct {
	Content *Content `json:"content"`
}

type generateResponse struct {
	Candidates []*candidate `json:"candidates"`
}

// Result carries the latest reply text together with the full updated
// history (prior turns + the user prompt + the model reply).
type Result struct {
	Reply   string
	History []*Content
}

// ChatModel is the contract for the upstream chat-completion capability.
type ChatModel interface {
	SendMessage(ctx context.Context, history []*Content, prompt string) (*Result, error)
}

type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a generateContent client. The timeout bounds the whole
// round trip; a hung upstream call fails the request instead of hanging it.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) SendMessage(ctx context.Context, history []*Content, prompt string) (*Result, error) {
	userTurn := &Content{
		Parts: []*Part{{Text: prompt}},
		Role:  RoleUser,
	}
	contents := make([]*Content, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, userTurn)

	payload := generateRequest{
		Contents: contents,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:generateContent",
		c.model,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes generateResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return nil, err
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from model")
	}

	reply := geminiRes.Candidates[0].Content
	if len(reply.Parts) == 0 {
		return nil, fmt.Errorf("model returned a content with no parts")
	}
	if reply.Role == "" {
		reply.Role = RoleModel
	}

	return &Result{
		Reply:   reply.Parts[0].Text,
		History: append(contents, reply),
	}, nil
}
