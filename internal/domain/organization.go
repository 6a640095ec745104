package domain

import "time"

// DocumentType distinguishes individual (CPF) and company (CNPJ) tax documents.
type DocumentType string

const (
	DocumentTypeCPF  DocumentType = "CPF"
	DocumentTypeCNPJ DocumentType = "CNPJ"
)

// Valid reports whether the document type is known.
func (d DocumentType) Valid() bool {
	return d == DocumentTypeCPF || d == DocumentTypeCNPJ
}

// Organization is a tenant. Every other tenant-scoped row points at one.
type Organization struct {
	ID           string
	Name         string
	Slug         string
	DocumentType DocumentType
	TaxID        string
	CreatedAt    time.Time
}
