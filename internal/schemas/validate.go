// Package schemas validates JSON documents against the JSON Schemas embedded in the binary.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SuggestionSchema describes an analysis response after field names are canonicalized
//
//go:embed suggestion.schema.json
var SuggestionSchema string

// WorkItemSchema describes one stored work item in its current shape
//
//go:embed work_item.schema.json
var WorkItemSchema string

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateSuggestion validates an analysis response
func ValidateSuggestion(jsonContent string) error {
	return validate("suggestion", SuggestionSchema, gojsonschema.NewStringLoader(jsonContent))
}

// ValidateWorkItem validates one stored work item
func ValidateWorkItem(jsonContent []byte) error {
	return validate("work_item", WorkItemSchema, gojsonschema.NewBytesLoader(jsonContent))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)", schemaContent, gojsonschema.NewStringLoader(jsonContent))
}

func validate(name, schemaContent string, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schemaContent), document)
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
