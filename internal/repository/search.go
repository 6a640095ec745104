package repository

import (
	"regexp"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketCodePrefix starts every ticket code.
const TicketCodePrefix = "TKT-"

// SearchKind tells how a free-text ticket search term is interpreted.
type SearchKind int

const (
	SearchNone SearchKind = iota
	// SearchCodeFragment: term starts with the code prefix; code substring or text.
	SearchCodeFragment
	// SearchExactCode: term looks like a bare code suffix; exact code or text.
	SearchExactCode
	// SearchText: title or description substring.
	SearchText
)

var bareCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// TicketSearch is the classified form of a search term.
type TicketSearch struct {
	Kind SearchKind
	Term string
	Code string
}

// ClassifySearch decides how term matches tickets. Matching is case-insensitive.
func ClassifySearch(term string) TicketSearch {
	term = strings.TrimSpace(term)
	if term == "" {
		return TicketSearch{Kind: SearchNone}
	}
	upper := strings.ToUpper(term)
	switch {
	case strings.HasPrefix(upper, TicketCodePrefix):
		return TicketSearch{Kind: SearchCodeFragment, Term: term, Code: upper}
	case bareCodePattern.MatchString(upper):
		return TicketSearch{Kind: SearchExactCode, Term: term, Code: TicketCodePrefix + upper}
	default:
		return TicketSearch{Kind: SearchText, Term: term}
	}
}

// Matches evaluates the search against an in-memory ticket with the same
// semantics as the SQL predicate.
func (s TicketSearch) Matches(t *domain.Ticket) bool {
	if s.Kind == SearchNone {
		return true
	}
	needle := strings.ToLower(s.Term)
	text := strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
	switch s.Kind {
	case SearchCodeFragment:
		return text || strings.Contains(strings.ToUpper(t.Code), s.Code)
	case SearchExactCode:
		return text || strings.EqualFold(t.Code, s.Code)
	default:
		return text
	}
}
