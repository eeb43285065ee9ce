package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchema is the subset of JSON Schema that Gemini's response schema can express
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Enum        []string               `json:"enum"`
	Items       *jsonSchema            `json:"items"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// GeminiSchema converts a JSON schema document into a Gemini response schema.
// Keywords Gemini does not support (minLength, $schema, title, ...) are ignored.
func GeminiSchema(schema string) (*genai.Schema, error) {
	var root jsonSchema
	if err := json.Unmarshal([]byte(schema), &root); err != nil {
		return nil, fmt.Errorf("invalid response schema: %w", err)
	}
	return root.toGemini("$")
}

func (s *jsonSchema) toGemini(path string) (*genai.Schema, error) {
	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}

	switch {
	case s.Type != "":
		t, ok := geminiTypes[s.Type]
		if !ok {
			return nil, fmt.Errorf("response schema %s: unsupported type %q", path, s.Type)
		}
		out.Type = t
	case len(s.Enum) > 0:
		out.Type = genai.TypeString
	default:
		return nil, fmt.Errorf("response schema %s: missing type", path)
	}

	if s.Items != nil {
		items, err := s.Items.toGemini(path + "[]")
		if err != nil {
			return nil, err
		}
		out.Items = items
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			converted, err := prop.toGemini(path + "." + name)
			if err != nil {
				return nil, err
			}
			out.Properties[name] = converted
		}
	}
	return out, nil
}
