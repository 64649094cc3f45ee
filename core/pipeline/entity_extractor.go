package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/citywill/smart-graph/helper"
	"github.com/citywill/smart-graph/model"
	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEntityExtractor creates an entity extractor using a NER model
// Uses distilbert-NER for named entity recognition
// Detects: PERSON, ORGANIZATION, LOCATION, MISC entities
func DefaultEntityExtractor() (EntityExtractFunc, error) {
	// Prepare model (download if needed)
	// Using KnightsAnalytics optimized distilbert-NER model
	modelName := "KnightsAnalytics/distilbert-NER"
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create token classification pipeline for NER
	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}), // Ignore non-entity tokens
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(text string) ([]*model.Entity, error) {
		// Run NER on the text
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}

		if len(result.Entities) == 0 {
			return nil, nil
		}

		// Convert NER results to model.Entity, collapsing repeats of the
		// same name and type within the chunk.
		var entities []*model.Entity
		seen := make(map[string]bool)
		for _, entity := range result.Entities[0] {
			name := strings.TrimSpace(entity.Word)
			if name == "" {
				continue
			}
			entityType := nerEntityType(entity.Entity)

			key := strings.ToLower(name) + "|" + string(entityType)
			if seen[key] {
				continue
			}
			seen[key] = true

			entities = append(entities, &model.Entity{
				Name: name,
				Type: entityType,
				Metadata: map[string]interface{}{
					"confidence": entity.Score,
					"start":      entity.Start,
					"end":        entity.End,
				},
			})
		}

		return entities, nil
	}, nil
}

// nerEntityType maps a BIO-tagged NER label onto an entity type.
func nerEntityType(label string) model.EntityType {
	label = strings.TrimPrefix(label, "B-")
	label = strings.TrimPrefix(label, "I-")

	switch label {
	case "PER", "PERSON":
		return model.EntityTypePerson
	case "ORG", "ORGANIZATION":
		return model.EntityTypeOrganization
	case "LOC", "LOCATION", "GPE":
		return model.EntityTypeLocation
	default:
		return model.EntityTypeOther
	}
}

const llmExtractionPrompt = `Extract the named entities from the following text and return them as JSON.
Entity types: person, organization, company, location, time, other.
Example response format:
[
  {"name": "Grace Hopper", "type": "person"},
  {"name": "IBM", "type": "company"},
  {"name": "New York", "type": "location"}
]

Text:
`

// llmEntity is the JSON shape the extraction prompt asks for.
type llmEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LLMEntityExtractor creates an entity extractor backed by a chat model.
// Unlike the NER extractor it can assign the full entity type set,
// including company and time.
func LLMEntityExtractor(client *openai.Client, chatModel string) EntityExtractFunc {
	return func(text string) ([]*model.Entity, error) {
		// Truncate to stay within the model's context window.
		runes := []rune(text)
		if len(runes) > 4000 {
			text = string(runes[:4000]) + "..."
		}

		response, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
			Model: chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: llmExtractionPrompt + text},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to call chat model: %w", err)
		}
		if len(response.Choices) == 0 {
			return nil, fmt.Errorf("chat model returned no choices")
		}

		parsed, err := parseLLMEntities(response.Choices[0].Message.Content)
		if err != nil {
			return nil, err
		}

		var entities []*model.Entity
		seen := make(map[string]bool)
		for _, entity := range parsed {
			name := strings.TrimSpace(entity.Name)
			if name == "" {
				continue
			}
			entityType := model.EntityType(strings.ToLower(strings.TrimSpace(entity.Type)))
			if !entityType.Valid() {
				entityType = model.EntityTypeOther
			}

			key := strings.ToLower(name) + "|" + string(entityType)
			if seen[key] {
				continue
			}
			seen[key] = true

			entities = append(entities, &model.Entity{
				Name: name,
				Type: entityType,
			})
		}

		return entities, nil
	}
}

// parseLLMEntities pulls the JSON array out of a chat response that may
// wrap it in prose or markdown fences.
func parseLLMEntities(response string) ([]llmEntity, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in chat response")
	}

	var entities []llmEntity
	if err := json.Unmarshal([]byte(response[start:end+1]), &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entities: %w", err)
	}

	return entities, nil
}
