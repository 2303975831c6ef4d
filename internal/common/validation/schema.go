// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"caab-workers/pkg/registry"

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

// Summary joins the errors into one line for logs and BPMN error details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Validator holds compiled input schemas keyed by task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every activity's input schema.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(reg.Activities))}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = s
	}
	return v, nil
}

// ValidateInput checks raw job variables against the task type's input schema.
// Task types without a schema always pass.
func (v *Validator) ValidateInput(taskType string, variables []byte) (*ValidationResult, error) {
	s, ok := v.schemas[taskType]
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	res, err := s.Validate(gojsonschema.NewBytesLoader(variables))
	if err != nil {
		return nil, fmt.Errorf("validate %s input: %w", taskType, err)
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out, nil
}
