package ai

// StructuredFacts is the schema-shaped result of a fact extraction.
// Every configured field name is present as a key; fields the model did
// not fill map to an empty slice.
type StructuredFacts struct {
	Fields map[string][]string
}

// EmptyFacts returns StructuredFacts with every schema field mapped to an
// empty slice. Used both as the soft-failure result and as the starting
// shape for parsing model responses.
func EmptyFacts(fields []string) StructuredFacts {
	facts := StructuredFacts{Fields: make(map[string][]string, len(fields))}
	for _, field := range fields {
		facts.Fields[field] = []string{}
	}
	return facts
}

// IsEmpty reports whether no field holds any fragment.
func (f StructuredFacts) IsEmpty() bool {
	for _, fragments := range f.Fields {
		if len(fragments) > 0 {
			return false
		}
	}
	return true
}
