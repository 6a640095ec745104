package validation

import (
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

// DigitsOnly strips every non-digit character.
func DigitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClassifyDocument infers the document type from the digit count of doc.
func ClassifyDocument(doc string) (domain.DocumentType, string, error) {
	digits := DigitsOnly(doc)
	switch len(digits) {
	case cpfLength:
		return domain.DocumentTypeCPF, digits, nil
	case cnpjLength:
		return domain.DocumentTypeCNPJ, digits, nil
	}
	return "", "", apperrors.NewValidationError(
		"invalid document: must contain 11 (CPF) or 14 (CNPJ) digits",
		map[string]any{"field": "document"},
	)
}

// ValidateTaxID requires taxID to be all digits with the length docType implies.
func ValidateTaxID(docType domain.DocumentType, taxID string) error {
	if !docType.Valid() {
		return apperrors.NewValidationError("document type must be CPF or CNPJ", map[string]any{"field": "documentType"})
	}
	if taxID == "" || DigitsOnly(taxID) != taxID {
		return apperrors.NewValidationError("tax id must contain only digits", map[string]any{"field": "taxId"})
	}
	want := cpfLength
	if docType == domain.DocumentTypeCNPJ {
		want = cnpjLength
	}
	if len(taxID) != want {
		return apperrors.NewValidationError(
			"tax id length does not match document type "+string(docType),
			map[string]any{"field": "taxId"},
		)
	}
	return nil
}
