package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements Provider for the Groq API (OpenAI-compatible chat
// completions). It is the preferred provider when configured: Groq's free
// tier carries much higher quotas than Gemini's.
type GroqProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	models  []ModelInfo
}

// GroqOption configures a GroqProvider.
type GroqOption func(*GroqProvider)

// WithGroqBaseURL sets the base URL (for testing).
func WithGroqBaseURL(url string) GroqOption {
	return func(p *GroqProvider) {
		p.baseURL = url
	}
}

// WithGroqHTTPClient sets a custom HTTP client.
func WithGroqHTTPClient(client *http.Client) GroqOption {
	return func(p *GroqProvider) {
		p.client = client
	}
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(apiKey string, opts ...GroqOption) *GroqProvider {
	p := &GroqProvider{
		apiKey:  apiKey,
		baseURL: defaultGroqBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// groqRequest is the request body for the chat completions API.
type groqRequest struct {
	Model          string              `json:"model"`
	Messages       []groqMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	ResponseFormat *groqResponseFormat `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponseFormat struct {
	Type string `json:"type"`
}

// groqResponse is the response from the chat completions API.
type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *GroqProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	messages := make([]groqMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = groqMessage(m)
	}

	gReq := groqRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		gReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		gReq.Temperature = &temp
	}
	if req.JSONMode {
		gReq.ResponseFormat = &groqResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(gReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, fmt.Errorf("groq api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gResp groqResponse
	if err := json.Unmarshal(respBody, &gResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(gResp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("no choices in response")
	}

	return CompletionResponse{
		Content:      gResp.Choices[0].Message.Content,
		Model:        gResp.Model,
		InputTokens:  gResp.Usage.PromptTokens,
		OutputTokens: gResp.Usage.CompletionTokens,
	}, nil
}

func (p *GroqProvider) Models() []ModelInfo {
	if p.models != nil {
		return p.models
	}
	return []ModelInfo{
		{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B", MaxTokens: 128000, Description: "Fast, capable default"},
		{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B", MaxTokens: 128000, Description: "Fastest Groq model"},
	}
}

func (p *GroqProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("groq health check failed (status %d)", resp.StatusCode)
	}
	return nil
}
