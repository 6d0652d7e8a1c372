package core

import (
	"errors"
	"testing"
)

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *Product
		wantErr error
	}{
		{
			name: "valid product",
			product: &Product{
				Code: "0254045",
				Name: "PARALEN 500",
			},
			wantErr: nil,
		},
		{
			name: "valid product with only a code",
			product: &Product{
				Code: "0254045",
			},
			wantErr: nil,
		},
		{
			name:    "nil product",
			product: nil,
			wantErr: ErrInvalidProduct,
		},
		{
			name: "empty code",
			product: &Product{
				Name: "PARALEN 500",
			},
			wantErr: ErrEmptyCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProduct(tt.product)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateProduct() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProduct() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Code:  "0254045",
				DocID: "spc-0254045",
				Type:  "spc",
				Data:  []byte("%PDF-1.4"),
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty code",
			doc: &Document{
				DocID: "spc-0254045",
				Data:  []byte("%PDF-1.4"),
			},
			wantErr: ErrEmptyCode,
		},
		{
			name: "empty doc id",
			doc: &Document{
				Code: "0254045",
				Data: []byte("%PDF-1.4"),
			},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name: "empty payload",
			doc: &Document{
				Code:  "0254045",
				DocID: "spc-0254045",
			},
			wantErr: ErrEmptyPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFact(t *testing.T) {
	tests := []struct {
		name    string
		fact    *ExtractedFact
		wantErr error
	}{
		{
			name:    "valid fact",
			fact:    NewExtractedFact("0094648", DefaultFactFields),
			wantErr: nil,
		},
		{
			name: "valid fact with no schema fields",
			fact: &ExtractedFact{
				Code:   "0094648",
				Fields: map[string][]string{},
			},
			wantErr: nil,
		},
		{
			name:    "nil fact",
			fact:    nil,
			wantErr: ErrInvalidFact,
		},
		{
			name:    "empty code",
			fact:    NewExtractedFact("", DefaultFactFields),
			wantErr: ErrEmptyCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFact(tt.fact)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFact() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFact() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
