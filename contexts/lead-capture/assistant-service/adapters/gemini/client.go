// Package gemini talks to the Google Generative Language API. One client
// serves both ports: chat completions for the assistant and text embeddings
// for the page-content index.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	application "leadgate/contexts/lead-capture/assistant-service/application"
	"leadgate/contexts/lead-capture/assistant-service/domain/entities"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultChatModel  = "gemini-1.5-flash"
	defaultEmbedModel = "embedding-001"

	// Low temperature keeps answers close to the retrieved page text.
	chatTemperature = 0.2
	maxReplyTokens  = 1024
)

type Client struct {
	apiKey     string
	baseURL    string
	chatModel  string
	embedModel string
	client     *http.Client
	logger     *slog.Logger
}

func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		chatModel:  defaultChatModel,
		embedModel: defaultEmbedModel,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     application.ResolveLogger(logger),
	}
}

// WithEndpoint overrides the API base URL. Tests point it at a stub.
func (c *Client) WithEndpoint(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Converse maps the conversation onto the generateContent call: the system
// message becomes the system instruction, user turns the "user" role and
// assistant turns the "model" role.
func (c *Client) Converse(ctx context.Context, messages []entities.Message) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("gemini api key not configured")
	}

	req := generateRequest{
		GenerationConfig: &generationConfig{
			Temperature:     chatTemperature,
			MaxOutputTokens: maxReplyTokens,
		},
	}
	for _, msg := range messages {
		switch msg.Role {
		case entities.RoleSystem:
			req.SystemInstruction = &content{Parts: []part{{Text: msg.Content}}}
		case entities.RoleUser:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		case entities.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		}
	}
	if len(req.Contents) == 0 {
		return "", errors.New("conversation has no user or assistant turns")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.chatModel, c.apiKey)
	var resp generateResponse
	if err := c.post(ctx, endpoint, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gemini api error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	var reply strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		reply.WriteString(p.Text)
	}
	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", errors.New("gemini returned an empty reply")
	}
	return text, nil
}

type embedBatchRequest struct {
	Requests []embedRequest `json:"requests"`
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedBatchResponse struct {
	Embeddings []embedding `json:"embeddings"`
	Error      *apiError   `json:"error,omitempty"`
}

type embedResponse struct {
	Embedding embedding `json:"embedding"`
	Error     *apiError `json:"error,omitempty"`
}

type embedding struct {
	Values []float32 `json:"values"`
}

func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("gemini api key not configured")
	}
	if len(texts) == 0 {
		return nil, errors.New("no texts provided")
	}

	req := embedBatchRequest{Requests: make([]embedRequest, len(texts))}
	for i, text := range texts {
		req.Requests[i] = embedRequest{
			Model:   "models/" + c.embedModel,
			Content: content{Parts: []part{{Text: text}}},
		}
	}

	endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", c.baseURL, c.embedModel, c.apiKey)
	var resp embedBatchResponse
	if err := c.post(ctx, endpoint, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("gemini api error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("gemini api key not configured")
	}

	req := embedRequest{
		Model:   "models/" + c.embedModel,
		Content: content{Parts: []part{{Text: query}}},
	}
	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, c.embedModel, c.apiKey)
	var resp embedResponse
	if err := c.post(ctx, endpoint, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("gemini api error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, errors.New("gemini returned an empty embedding")
	}
	return resp.Embedding.Values, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := raw
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return json.Unmarshal(raw, out)
}
