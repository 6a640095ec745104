package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGemini creates a Gemini client. An empty baseURL selects the public endpoint.
func NewGemini(httpClient *http.Client, baseURL, apiKey string) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &Gemini{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate implements ChatModel.
func (g *Gemini) Generate(ctx context.Context, prompt Prompt) (string, error) {
	wire := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt.User}}}},
	}
	if prompt.System != "" {
		wire.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt.System}}}
	}
	wire.GenerationConfig.Temperature = prompt.Temperature

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(prompt.Model))
	var resp geminiResponse
	if err := postJSON(ctx, g.httpClient, endpoint, map[string]string{"x-goog-api-key": g.apiKey}, wire, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("ai: gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
