package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

func TestParseAnalysisFenced(t *testing.T) {
	raw := "```json\n{\"priority\":\"low\",\"category\":\"Hardware\"}\n```"
	a, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.NotNil(t, a.Priority)
	assert.Equal(t, "low", *a.Priority)
	assert.Equal(t, "Hardware", *a.Category)
	assert.Nil(t, a.Title)
	assert.Nil(t, a.Diagnosis)

	title := "Printer down"
	e := domain.Enrichment{Title: title}
	rejected := a.ApplyTo(&e)
	assert.Empty(t, rejected)
	assert.Equal(t, domain.TicketPriorityLow, *e.Priority)
	assert.Equal(t, "Hardware", *e.Category)
	assert.Equal(t, "Printer down", e.Title)
	assert.Nil(t, e.Sentiment)
}

func TestParseAnalysisMalformed(t *testing.T) {
	_, err := ParseAnalysis("I think this is a hardware problem")
	assert.Error(t, err)
}

func TestParseAnalysisScalarsAndNulls(t *testing.T) {
	a, err := ParseAnalysis(`{"title": 42, "sentiment": null, "category": {"x":1}, "diagnosis": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, "42", *a.Title)
	assert.Nil(t, a.Sentiment)
	assert.Nil(t, a.Category)
	assert.Equal(t, "ok", *a.Diagnosis)
}

func TestApplyUnknownPriority(t *testing.T) {
	a, err := ParseAnalysis(`{"priority":"urgent","sentiment":"Neutral"}`)
	require.NoError(t, err)

	current := domain.TicketPriorityMedium
	e := domain.Enrichment{Priority: &current}
	assert.Equal(t, "URGENT", a.ApplyTo(&e))
	assert.Equal(t, domain.TicketPriorityMedium, *e.Priority)
	assert.Equal(t, "Neutral", *e.Sentiment)
}

func TestApplyKeepsTitleWhenBlank(t *testing.T) {
	a, err := ParseAnalysis(`{"title":"   ","category":"Network"}`)
	require.NoError(t, err)

	e := domain.Enrichment{Title: "Printer"}
	a.ApplyTo(&e)
	assert.Equal(t, "Printer", e.Title)
	assert.Equal(t, "Network", *e.Category)

	a, err = ParseAnalysis(`{"title":"  Office printer offline "}`)
	require.NoError(t, err)
	a.ApplyTo(&e)
	assert.Equal(t, "Office printer offline", e.Title)
}

func TestParseInstruction(t *testing.T) {
	i, ok := ParseInstruction("")
	assert.True(t, ok)
	assert.Equal(t, InstructionRefine, i)
	i, ok = ParseInstruction("summarize")
	assert.True(t, ok)
	assert.Equal(t, InstructionSummarize, i)
	_, ok = ParseInstruction("TRANSLATE")
	assert.False(t, ok)
}

func TestPrompts(t *testing.T) {
	p := TextPrompt("printer broken", InstructionRefine)
	assert.Contains(t, p.System, "Context:")
	assert.Contains(t, p.System, "Impact:")
	assert.Equal(t, "Original text: printer broken", p.User)

	p = TextPrompt("printer broken", InstructionSummarize)
	assert.Contains(t, p.System, "single paragraph")

	p = AnalysisPrompt("Down", "Printer", []string{"Hardware", "Network"})
	assert.Contains(t, p.System, "[Hardware, Network]")
	assert.Equal(t, "Ticket: Down - Printer", p.User)
}

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-goog-api-key"))

		var body geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.InDelta(t, 0.1, body.GenerationConfig.Temperature, 1e-9)
		if assert.NotNil(t, body.SystemInstruction) && assert.Len(t, body.Contents, 1) {
			assert.Equal(t, "sys", body.SystemInstruction.Parts[0].Text)
			assert.Equal(t, "hello", body.Contents[0].Parts[0].Text)
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi "},{"text":"there"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini(server.Client(), server.URL, "key-1")
	out, err := g.Generate(context.Background(), Prompt{System: "sys", User: "hello", Model: "gemini-3-flash-preview", Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out)
}

func TestGeminiRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for model","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := NewGemini(server.Client(), server.URL, "k").Generate(context.Background(), Prompt{Model: "m"})
	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, http.StatusTooManyRequests, providerErr.StatusCode)
	assert.Equal(t, "RESOURCE_EXHAUSTED", providerErr.Type)
	assert.True(t, providerErr.IsRateLimited())
	assert.True(t, providerErr.Retryable())
}

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var body openAIRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"done"}}]}`))
	}))
	defer server.Close()

	out, err := NewOpenAI(server.Client(), server.URL, "k").Generate(context.Background(), Prompt{System: "s", User: "u", Model: "gpt"})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestProviderErrorClassification(t *testing.T) {
	assert.True(t, (&ProviderError{StatusCode: 400, Message: "Too Many Requests"}).IsRateLimited())
	assert.False(t, (&ProviderError{StatusCode: 400, Message: "bad"}).Retryable())
	assert.True(t, (&ProviderError{StatusCode: 503}).Retryable())
}

func TestNewFactory(t *testing.T) {
	m, err := New(config.AIConfig{Provider: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, m)

	m, err = New(config.AIConfig{Provider: "OpenAI"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, m)

	_, err = New(config.AIConfig{Provider: "other"})
	assert.Error(t, err)
}
