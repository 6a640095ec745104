package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI calls any chat-completions compatible endpoint.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOpenAI creates an OpenAI-compatible client.
func NewOpenAI(httpClient *http.Client, baseURL, apiKey string) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements ChatModel.
func (o *OpenAI) Generate(ctx context.Context, prompt Prompt) (string, error) {
	wire := openAIRequest{Model: prompt.Model, Temperature: prompt.Temperature}
	if prompt.System != "" {
		wire.Messages = append(wire.Messages, openAIMessage{Role: "system", Content: prompt.System})
	}
	wire.Messages = append(wire.Messages, openAIMessage{Role: "user", Content: prompt.User})

	var resp openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	if err := postJSON(ctx, o.httpClient, o.baseURL+"/chat/completions", headers, wire, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai: chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
