package search

import "strings"

// containsFold reports whether text contains query as a case-insensitive
// substring. Empty queries never match.
func containsFold(text, query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// factText flattens the fragments of the given fields into one searchable
// string, fields in schema order.
func factText(fields map[string][]string, order []string) string {
	var sb strings.Builder
	for _, field := range order {
		for _, fragment := range fields[field] {
			if fragment == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fragment)
		}
	}
	return sb.String()
}
