// Package validation checks job variables against the JSON schemas declared
// for each activity in the registry.
package validation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "dogwalk-workers/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds compiled input schemas keyed by task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every schema up front so a malformed registry fails
// at startup rather than on the first job.
func NewValidator(schemas map[string]map[string]interface{}) (*Validator, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(schemas))
	for taskType, raw := range schemas {
		if len(raw) == 0 {
			continue
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", taskType, err)
		}
		compiled[taskType] = s
	}
	return &Validator{schemas: compiled}, nil
}

// Validate checks input against the schema for taskType. Task types without a
// schema always pass.
func (v *Validator) Validate(taskType string, input map[string]interface{}) (*ValidationResult, error) {
	if v == nil {
		return &ValidationResult{Valid: true}, nil
	}
	s, ok := v.schemas[taskType]
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// Check is Validate folded into a SCHEMA_VALIDATION_FAILED error.
func (v *Validator) Check(taskType string, input map[string]interface{}) error {
	result, err := v.Validate(taskType, input)
	if err != nil {
		return apperrors.NewSchemaValidationFailedError(taskType, err.Error())
	}
	if !result.Valid {
		return apperrors.NewSchemaValidationFailedError(taskType, strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("fields", result.Fields())
	}
	return nil
}

// ValidateInput validates a document against a one-off schema.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// fieldOf reports the offending property. Required-property errors are
// raised on the parent, so the missing name comes from the details.
func fieldOf(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
				return prop
			}
			return field + "." + prop
		}
	}
	return field
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Fields lists the distinct offending fields in sorted order.
func (vr *ValidationResult) Fields() []string {
	seen := map[string]bool{}
	var fields []string
	for _, err := range vr.Errors {
		if !seen[err.Field] {
			seen[err.Field] = true
			fields = append(fields, err.Field)
		}
	}
	sort.Strings(fields)
	return fields
}
