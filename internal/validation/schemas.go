package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Schemas for the two precomputed artifacts loaded at startup. The
// on-disk encoding is JSON: the movie catalog is an ordered list of
// {movie_id,title} records, the similarity matrix is a row-major
// array of numeric rows. Structural problems are caught here, before
// the artifacts reach the catalog loader.
const (
	movieCatalogSchema = `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "array",
		"items": {
			"type": "object",
			"required": ["movie_id", "title"],
			"properties": {
				"movie_id": {"type": "integer", "minimum": 1},
				"title": {"type": "string", "minLength": 1}
			}
		}
	}`

	similarityMatrixSchema = `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "array",
		"items": {
			"type": "array",
			"items": {"type": "number"}
		}
	}`
)

// ArtifactValidator validates the catalog and similarity artifacts
// against their JSON schemas.
type ArtifactValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewArtifactValidator compiles the embedded artifact schemas.
func NewArtifactValidator() (*ArtifactValidator, error) {
	sources := map[string]string{
		"movie-catalog":     movieCatalogSchema,
		"similarity-matrix": similarityMatrixSchema,
	}

	av := &ArtifactValidator{
		schemas: make(map[string]*gojsonschema.Schema, len(sources)),
	}

	for name, source := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		av.schemas[name] = schema
	}

	return av, nil
}

// ValidateCatalog validates raw movie catalog JSON.
func (av *ArtifactValidator) ValidateCatalog(raw []byte) *ValidationResult {
	return av.validate("movie-catalog", raw)
}

// ValidateSimilarityMatrix validates raw similarity matrix JSON.
func (av *ArtifactValidator) ValidateSimilarityMatrix(raw []byte) *ValidationResult {
	return av.validate("similarity-matrix", raw)
}

func (av *ArtifactValidator) validate(schemaName string, raw []byte) *ValidationResult {
	schema, exists := av.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Message: fmt.Sprintf("Schema '%s' not found", schemaName),
				Code:    "SCHEMA_NOT_FOUND",
			}},
		}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "validation",
				Message: fmt.Sprintf("Validation error: %v", err),
				Code:    "VALIDATION_ERROR",
			}},
		}
	}

	validationResult := &ValidationResult{
		Valid:  result.Valid(),
		Errors: make([]ValidationError, 0),
	}

	if !result.Valid() {
		for _, err := range result.Errors() {
			validationResult.Errors = append(validationResult.Errors, ValidationError{
				Field:   err.Field(),
				Message: err.Description(),
				Code:    "VALIDATION_ERROR",
				Value:   err.Value(),
				Context: err.Context().String(),
			})
		}
	}

	return validationResult
}

// ValidationResult represents the result of a validation operation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
	Context string      `json:"context,omitempty"`
}

// Error joins the validation errors into one message.
func (vr *ValidationResult) Error() string {
	if vr.Valid || len(vr.Errors) == 0 {
		return ""
	}
	msg := vr.Errors[0].Message
	if vr.Errors[0].Field != "" {
		msg = vr.Errors[0].Field + ": " + msg
	}
	if len(vr.Errors) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(vr.Errors)-1)
	}
	return msg
}
