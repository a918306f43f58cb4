package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/dispute-service/internal/config"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiMaxRetries   = 3
	geminiInitialDelay = 1 * time.Second
)

// ErrNotConfigured indicates no API key was provided.
var ErrNotConfigured = errors.New("gemini api key not configured")

// GeminiClient talks to the Gemini REST API.
type GeminiClient struct {
	apiKey         string
	model          string
	embeddingModel string
	baseURL        string
	client         *http.Client
}

// NewGeminiClient builds a client from config.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		baseURL:        geminiBaseURL,
		client:         &http.Client{Timeout: cfg.Timeout()},
	}
}

// Configured reports whether the client can reach the hosted model.
func (c *GeminiClient) Configured() bool {
	return c.apiKey != ""
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type embedRequest struct {
	Content geminiContent `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateContent sends the chat history plus the final prompt and returns
// the model's text reply.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, history []Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for i, msg := range history {
		role := "user"
		if msg.Role == "assistant" || msg.Role == "model" {
			role = "model"
		}
		// Gemini rejects a history that opens with a model turn.
		if i == 0 && role == "model" {
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: msg.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	var resp generateResponse
	if err := c.post(ctx, url, generateRequest{Contents: contents}, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gemini: %s", resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// Embed returns the embedding vector for one text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/%s:embedContent?key=%s", c.baseURL, c.embeddingModel, c.apiKey)
	var resp embedResponse
	if err := c.post(ctx, url, embedRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("gemini: %s", resp.Error.Message)
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, errors.New("gemini: empty embedding")
	}
	return resp.Embedding.Values, nil
}

// post issues a JSON request with bounded retry on 429/5xx.
func (c *GeminiClient) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	delay := geminiInitialDelay
	var lastErr error
	for attempt := 0; attempt < geminiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("gemini: status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gemini: status %d: %s", resp.StatusCode, string(data))
		}
		return json.Unmarshal(data, out)
	}
	return lastErr
}
