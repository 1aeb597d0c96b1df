package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidReport wraps required-field failures on report input.
var ErrInvalidReport = errors.New("dashboard: invalid report")

// ReportValidator checks report drafts before they are sent to the backend.
type ReportValidator interface {
	Validate(input ReportInput) error
}

const reportSchemaName = "report_input.json"

func reportInputSchema() map[string]any {
	nonBlank := `\S`
	return map[string]any{
		"type":     "object",
		"required": []string{"scope", "metrics"},
		"properties": map[string]any{
			"scope": map[string]any{
				"type":      "string",
				"minLength": 1,
				"pattern":   nonBlank,
			},
			"metrics": map[string]any{
				"type":      "string",
				"minLength": 1,
				"maxLength": MaxMetricsLength,
				"pattern":   nonBlank,
			},
		},
	}
}

// JSONSchemaValidator enforces the required-field rules with jsonschema v5.
type JSONSchemaValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewJSONSchemaValidator builds a validator for report input.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate ensures scope and metrics are present and non-blank.
func (v *JSONSchemaValidator) Validate(input ReportInput) error {
	schema, err := v.compiled()
	if err != nil {
		return err
	}
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("dashboard: marshal report input: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize report input: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return nil
}

func (v *JSONSchemaValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(reportInputSchema())
		if err != nil {
			v.err = fmt.Errorf("dashboard: marshal report schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(reportSchemaName, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("dashboard: load report schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(reportSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile report schema: %w", v.err)
		}
	})
	return v.schema, v.err
}
