// Package validation holds the text rules shared by every mutating operation.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Mode selects the rule applied by ValidateString.
type Mode int

const (
	// StrictName allows letters, marks, digits, spaces and . - _ ( ).
	StrictName Mode = iota
	// DescriptionNoEmoji accepts any text without symbol-other code points.
	DescriptionNoEmoji
	// Slug accepts lowercase ASCII letters, digits and dashes.
	Slug
)

var (
	strictNamePattern = regexp.MustCompile(`^[\p{L}\p{M}0-9\p{Z}._()\-]+$`)
	emojiPattern      = regexp.MustCompile(`\p{So}`)
	slugPattern       = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonSlugChars      = regexp.MustCompile(`[^a-z0-9]+`)
)

const fallbackSlug = "untitled"

// ValidateString checks value against mode. Blank values always pass; required-ness
// is checked by callers. With normalize set the value is NFKC-normalized first.
func ValidateString(value, field string, mode Mode, normalize bool) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if normalize {
		value = norm.NFKC.String(value)
	}

	switch mode {
	case StrictName:
		if !strictNamePattern.MatchString(value) {
			return apperrors.NewValidationError(
				fmt.Sprintf("field '%s' contains invalid characters: %s", field, value),
				map[string]any{"field": field},
			)
		}
	case DescriptionNoEmoji:
		if emojiPattern.MatchString(value) {
			return apperrors.NewValidationError(
				fmt.Sprintf("field '%s' must not contain emojis or special symbols", field),
				map[string]any{"field": field},
			)
		}
	case Slug:
		if !slugPattern.MatchString(value) {
			return apperrors.NewValidationError(
				fmt.Sprintf("field '%s' must contain only lowercase letters, numbers and dashes", field),
				map[string]any{"field": field},
			)
		}
	}
	return nil
}

// ToSlug derives a URL-safe identifier: accents stripped, lowercased, every other run
// of characters collapsed to a single dash. The result always matches Slug mode.
func ToSlug(input string) string {
	s := slug.Make(norm.NFKC.String(input))
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// NormalizeText trims and collapses internal whitespace runs to one space.
func NormalizeText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
