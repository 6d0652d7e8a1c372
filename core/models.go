package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Checksum is a content checksum of a document payload.
// It is used to detect byte-identical re-fetches, never as a key.
type Checksum uint64

// ChecksumFromContent computes a deterministic checksum from raw bytes using
// BLAKE2b hashing. Identical payloads always produce identical checksums.
func ChecksumFromContent(data []byte) Checksum {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return Checksum(binary.LittleEndian.Uint64(sum))
}

// Product is a catalog entry for one registered medicinal item.
// Code is the stable catalog product code and the primary key; every other
// attribute is an optional string copied verbatim from the catalog detail
// payload. Re-ingestion replaces all attributes wholesale.
type Product struct {
	Code               string
	Name               string
	Strength           string
	Form               string
	Packaging          string
	Route              string
	Supplement         string
	Container          string
	Holder             string
	HolderCountry      string
	RegistrationStatus string
	ATCCode            string
	RegistrationNumber string
	DDDAmount          string
	DDDUnit            string
	DDDPack            string
	Dispensing         string
	Expiration         string
	ExpirationUnit     string
	RegisteredName     string
	SafetyFeatures     string
	PackLanguage       string
	RegistrationDate   string
	InsertedAt         time.Time // When the record was first stored
	UpdatedAt          time.Time // When the record was last replaced
}

// EURegistrationPrefix marks registration numbers issued centrally; documents
// for these products come from a slower upstream that needs extra pacing.
const EURegistrationPrefix = "EU"

// IsEURegistered reports whether the product's registration number indicates
// an EU-sourced document.
func (p *Product) IsEURegistered() bool {
	return strings.HasPrefix(p.RegistrationNumber, EURegistrationPrefix)
}

// Document is a binary artifact (typically the SPC PDF) owned by a Product.
// Identity is the (Code, DocID) pair; re-fetching overwrites the payload
// wholesale.
type Document struct {
	Code       string
	DocID      string
	Type       string
	Name       string
	Data       []byte
	Size       int
	Checksum   Checksum
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ExtractedFact is the model-derived, schema-shaped summary of a product's
// document. Fields maps schema field names to short text fragments; fields
// the model omitted are present with an empty slice. At most one record
// exists per product code and upserts replace it wholesale.
type ExtractedFact struct {
	Code       string
	Fields     map[string][]string
	SourceText string // bounded provenance prefix of the document text
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// FieldText joins the fragments of one field into a single string.
func (f *ExtractedFact) FieldText(field string) string {
	return strings.Join(f.Fields[field], " ")
}

// CombinedText joins the fragments of the given fields, in order, into the
// text the combined embedding is computed over.
func (f *ExtractedFact) CombinedText(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if text := f.FieldText(field); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// IsEmpty reports whether no field carries any fragment.
func (f *ExtractedFact) IsEmpty() bool {
	for _, fragments := range f.Fields {
		if len(fragments) > 0 {
			return false
		}
	}
	return true
}

// VectorRecord holds the embedding vectors for one product: one vector per
// indexed field group plus the combined vector over all indexed text.
// All vectors must come from the same model and dimensionality for the
// lifetime of the index.
type VectorRecord struct {
	Code         string
	FieldVectors map[string][]float32
	Combined     []float32
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// SimilarityMatch is a product match from vector similarity search.
type SimilarityMatch struct {
	Code  string
	Score float32
}

// ProductMatch is a search result hydrated with catalog and fact data.
// Similarity is zero for lexical matches.
type ProductMatch struct {
	Code       string
	Name       string
	Fields     map[string][]string
	Similarity float32
}

// PendingDocument is an enrichment backlog entry: a product with a stored
// primary document but no fact record yet.
type PendingDocument struct {
	Code string
	Name string
	Data []byte
}
