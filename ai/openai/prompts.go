package openai

import (
	"fmt"
	"strings"
)

const extractionPromptTemplate = `Analyzuj následující text z SPC (Souhrn údajů o přípravku) pro lék s kódem SÚKL: %s

Extrahuj následující informace a vrať je v JSON formátu:

%s

Vrať pouze JSON, žádné další texty.

Text SPC:
%s`

// buildFieldSkeleton renders the JSON object the model must fill, one
// empty array per schema field.
func buildFieldSkeleton(fields []string) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, field := range fields {
		b.WriteString(fmt.Sprintf("    %q: [\"\"]", field))
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// buildExtractionPrompt creates the single user message for one document.
func buildExtractionPrompt(code string, fields []string, text string) string {
	return fmt.Sprintf(extractionPromptTemplate, code, buildFieldSkeleton(fields), text)
}
