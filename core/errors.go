package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidProduct indicates a Product failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidFact indicates an ExtractedFact failed validation.
	ErrInvalidFact = errors.New("invalid extracted fact")

	// ErrEmptyCode indicates the product code is empty.
	ErrEmptyCode = errors.New("product code cannot be empty")

	// ErrEmptyDocumentID indicates the document identifier is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyPayload indicates a document carries no bytes.
	ErrEmptyPayload = errors.New("document payload cannot be empty")

	// ErrDimensionMismatch indicates a vector of the wrong length for the
	// index.
	ErrDimensionMismatch = errors.New("embedding dimensionality mismatch")
)
