package core

import "fmt"

// ValidateProduct validates a Product according to domain rules.
//
// Validation rules:
//   - Code must not be empty
//
// Every other attribute is optional: the catalog returns sparse payloads
// and a full-replace upsert must accept whatever the catalog sent.
func ValidateProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}

	if product.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyCode)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Code must not be empty (documents cannot outlive their product)
//   - DocID must not be empty
//   - Data must not be empty (empty fetch results are a skip upstream,
//     never a stored document)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyCode)
	}

	if doc.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if len(doc.Data) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyPayload)
	}

	return nil
}

// ValidateFact validates an ExtractedFact according to domain rules.
//
// Validation rules:
//   - Code must not be empty
//
// Empty field slices are valid: the extraction contract defaults omitted
// fields to an empty sequence rather than failing the record.
func ValidateFact(fact *ExtractedFact) error {
	if fact == nil {
		return fmt.Errorf("%w: fact is nil", ErrInvalidFact)
	}

	if fact.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyCode)
	}

	return nil
}
