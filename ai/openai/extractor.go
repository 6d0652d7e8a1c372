// Copyright 2025 Lekodex Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/lekodex/lekodex/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// FactExtractor implements ai.FactExtractor using OpenAI-compatible chat APIs.
type FactExtractor struct {
	client     llms.Model
	fields     []string
	textBudget int
	seed       int
	logger     *slog.Logger
}

// newFactExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newFactExtractor(config *ai.Config) (*FactExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractionHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractionModel),
	)
	if err != nil {
		return nil, err
	}

	return &FactExtractor{
		client:     client,
		fields:     config.FactFields,
		textBudget: config.TextBudget,
		seed:       config.Seed,
		logger:     slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewFactExtractor creates a new fact extractor using the provided configuration.
//
// Returns ai.FactExtractor interface to enforce abstraction.
func NewFactExtractor(config *ai.Config) (ai.FactExtractor, error) {
	return newFactExtractor(config)
}

// ExtractFacts sends one JSON-mode completion request for the document text
// and parses the response into the configured field schema. Malformed or
// empty responses yield empty facts and no error; only transport failures
// are reported as errors.
func (e *FactExtractor) ExtractFacts(ctx context.Context, text, code string) (ai.StructuredFacts, error) {
	// Respect the service's context limit.
	if runes := []rune(text); len(runes) > e.textBudget {
		text = string(runes[:e.textBudget])
	}

	prompt := buildExtractionPrompt(code, e.fields, text)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithJSONMode(),
		llms.WithSeed(e.seed))
	if err != nil {
		e.logger.Error("failed to generate content", "code", code, "err", err)
		return ai.EmptyFacts(e.fields), err
	}

	if len(response.Choices) < 1 {
		e.logger.Debug("no choices returned from model", "code", code)
		return ai.EmptyFacts(e.fields), nil
	}

	// Strip markdown code fences if present
	responseText := strings.TrimSpace(response.Choices[0].Content)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	// Try to repair common JSON issues
	responseText = repairJSON(responseText)

	return e.parseResponse(responseText, code), nil
}

// parseResponse shapes a model response into the field schema. Parse
// failures are soft: the pipeline stores empty facts and moves on.
func (e *FactExtractor) parseResponse(responseText, code string) ai.StructuredFacts {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		e.logger.Warn("error parsing extraction response",
			"code", code,
			"response", responseText,
			"err", err)
		return ai.EmptyFacts(e.fields)
	}

	facts := ai.EmptyFacts(e.fields)
	for _, field := range e.fields {
		value, ok := raw[field]
		if !ok {
			continue
		}

		var fragments []string
		if err := json.Unmarshal(value, &fragments); err != nil {
			// Some models answer with a bare string instead of an array.
			var single string
			if err := json.Unmarshal(value, &single); err != nil {
				e.logger.Warn("unexpected field shape in extraction response",
					"code", code, "field", field)
				continue
			}
			if single != "" {
				fragments = []string{single}
			}
		}

		cleaned := make([]string, 0, len(fragments))
		for _, fragment := range fragments {
			fragment = strings.TrimSpace(fragment)
			if fragment != "" {
				cleaned = append(cleaned, fragment)
			}
		}
		facts.Fields[field] = cleaned
	}

	e.logger.Debug("extracted facts", "code", code, "empty", facts.IsEmpty())
	return facts
}
