package llm

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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 120 * time.Second
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type OpenAIOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewOpenAIClient(options OpenAIOptions) *OpenAIClient {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := options.Model
	if model == "" {
		model = defaultModel
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &OpenAIClient{
		baseURL:    baseURL,
		apiKey:     options.APIKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []Message           `json:"messages"`
	ResponseFormat *responseFormatBody `json:"response_format,omitempty"`
}

type responseFormatBody struct {
	Type       string         `json:"type"`
	JSONSchema jsonSchemaBody `json:"json_schema"`
}

type jsonSchemaBody struct {
	Name   string  `json:"name"`
	Strict bool    `json:"strict"`
	Schema *Schema `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, chatRequest{Model: c.model, Messages: messages})
}

func (c *OpenAIClient) CompleteStructured(ctx context.Context, messages []Message, format ResponseFormat) (json.RawMessage, error) {
	request := chatRequest{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &responseFormatBody{
			Type: "json_schema",
			JSONSchema: jsonSchemaBody{
				Name:   format.Name,
				Strict: true,
				Schema: format.Schema,
			},
		},
	}
	content, err := c.complete(ctx, request)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(content), nil
}

func (c *OpenAIClient) complete(ctx context.Context, request chatRequest) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer httpResponse.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResponse.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var response chatResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return "", fmt.Errorf("decode completion response (status %d): %w", httpResponse.StatusCode, err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("completion provider error (status %d): %s", httpResponse.StatusCode, response.Error.Message)
	}
	if httpResponse.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion request failed with status %d", httpResponse.StatusCode)
	}
	if len(response.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return response.Choices[0].Message.Content, nil
}
