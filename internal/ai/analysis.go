package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Analysis holds the fields a model returned. A nil field was absent.
type Analysis struct {
	Title             *string
	Sentiment         *string
	Priority          *string
	Category          *string
	Diagnosis         *string
	SuggestedSolution *string
}

// StripCodeFences removes Markdown code fences wrapping a model answer.
func StripCodeFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseAnalysis decodes a model answer into an Analysis. Scalar values are taken
// as text; null, objects and arrays count as absent.
func ParseAnalysis(raw string) (*Analysis, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &fields); err != nil {
		return nil, fmt.Errorf("ai: parse analysis: %w", err)
	}
	return &Analysis{
		Title:             textField(fields, "title"),
		Sentiment:         textField(fields, "sentiment"),
		Priority:          textField(fields, "priority"),
		Category:          textField(fields, "category"),
		Diagnosis:         textField(fields, "diagnosis"),
		SuggestedSolution: textField(fields, "suggested_solution"),
	}, nil
}

func textField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return nil
		}
		return &s
	case 'n', '{', '[':
		return nil
	default:
		s := string(raw)
		return &s
	}
}

// ApplyTo overwrites every present field of e. A blank title keeps the current one. An unknown priority is left out and
// reported back so the caller can log it.
func (a *Analysis) ApplyTo(e *domain.Enrichment) (rejectedPriority string) {
	if a.Title != nil && strings.TrimSpace(*a.Title) != "" {
		e.Title = strings.TrimSpace(*a.Title)
	}
	if a.Sentiment != nil {
		e.Sentiment = cloneString(a.Sentiment)
	}
	if a.Category != nil {
		e.Category = cloneString(a.Category)
	}
	if a.Diagnosis != nil {
		e.Diagnosis = cloneString(a.Diagnosis)
	}
	if a.SuggestedSolution != nil {
		e.SuggestedSolution = cloneString(a.SuggestedSolution)
	}
	if a.Priority != nil {
		if p, ok := domain.ParseTicketPriority(*a.Priority); ok {
			e.Priority = &p
		} else {
			return strings.ToUpper(*a.Priority)
		}
	}
	return ""
}

func cloneString(s *string) *string {
	v := *s
	return &v
}
