// Package schemas validates LLM JSON responses against embedded JSON
// Schemas before the rest of the pipeline trusts them.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed rubric_response.json
var rubricResponseSchema string

//go:embed section_score_response.json
var sectionScoreResponseSchema string

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateRubricResponse checks a rubric-generation response document.
func ValidateRubricResponse(jsonContent string) error {
	return validate(rubricResponseSchema, jsonContent)
}

// ValidateSectionScoreResponse checks a section-scoring response document.
func ValidateSectionScoreResponse(jsonContent string) error {
	return validate(sectionScoreResponseSchema, jsonContent)
}

func validate(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// Unparsable document (or schema); surface it as a plain error so
		// callers fall back the same way they do for validation failures.
		return fmt.Errorf("schema validation could not run: %w", err)
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
