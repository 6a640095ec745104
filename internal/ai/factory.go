package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spec-kit/support-desk/internal/config"
)

// New builds the ChatModel named by cfg.Provider.
func New(cfg config.AIConfig) (ChatModel, error) {
	client := &http.Client{Timeout: cfg.Timeout()}
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGemini(client, cfg.BaseURL, cfg.APIKey), nil
	case "openai":
		return NewOpenAI(client, cfg.BaseURL, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
