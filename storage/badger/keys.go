package badger

import "fmt"

// Key prefixes for different record types. Keys embed the product code, so
// an upsert is a plain Set and key order follows catalog code order.
const (
	productPrefix  = "prodrec"
	documentPrefix = "docrec"
	factPrefix     = "factrec"
	vectorPrefix   = "vecrec"
)

// makeProductKey generates the key for a product by code.
func makeProductKey(code string) []byte {
	return []byte(fmt.Sprintf("%s:%s", productPrefix, code))
}

// makeDocumentKey generates the composite key for a document.
// Format: prefix:code:docID
func makeDocumentKey(code, docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentPrefix, code, docID))
}

// makeFactKey generates the key for a fact record by code.
func makeFactKey(code string) []byte {
	return []byte(fmt.Sprintf("%s:%s", factPrefix, code))
}

// makeVectorKey generates the key for a vector record by code.
func makeVectorKey(code string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorPrefix, code))
}
