package core

// DefaultFactFields is the extraction schema: the field names the structured
// extraction service is asked to populate, in a stable order. The names are
// part of the external JSON contract and match the SPC vocabulary of the
// upstream catalog, so they are not translated.
var DefaultFactFields = []string{
	"indikace",
	"kontraindikace",
	"ucinky",
	"zpusob_podani",
	"davkovani",
	"nezadouci_ucinky",
	"interakce",
	"skupina",
	"mechanismus",
}

// DefaultIndexedFields are the field groups that get their own embedding
// vector in addition to the combined vector.
var DefaultIndexedFields = []string{
	FieldIndications,
	FieldDosage,
}

// Well-known schema field names referenced by the search gateway.
const (
	FieldIndications = "indikace"
	FieldDosage      = "davkovani"
)

// SourceTextLimit bounds the provenance text stored with an ExtractedFact.
const SourceTextLimit = 1000

// EmbeddingDim is the vector dimensionality of the reference embedding
// model. Mixing dimensionalities within one index corrupts ranking, so the
// stores reject vectors of any other length once the first record is in.
const EmbeddingDim = 384

// NewExtractedFact returns a fact record for code with every schema field
// present and empty.
func NewExtractedFact(code string, schema []string) *ExtractedFact {
	fields := make(map[string][]string, len(schema))
	for _, field := range schema {
		fields[field] = []string{}
	}
	return &ExtractedFact{Code: code, Fields: fields}
}
