package dashboard

import (
	"errors"
	"strings"
	"testing"
)

func TestJSONSchemaValidatorAcceptsFilledReport(t *testing.T) {
	validator := NewJSONSchemaValidator()
	if err := validator.Validate(ReportInput{Scope: "Engineering", Metrics: "participation rate"}); err != nil {
		t.Fatalf("expected valid report, got %v", err)
	}
}

func TestJSONSchemaValidatorRejectsMissingFields(t *testing.T) {
	validator := NewJSONSchemaValidator()
	cases := map[string]ReportInput{
		"empty scope":   {Scope: "", Metrics: "rate"},
		"blank scope":   {Scope: "   ", Metrics: "rate"},
		"empty metrics": {Scope: "Sales", Metrics: ""},
		"blank metrics": {Scope: "Sales", Metrics: "\t\n"},
		"too long":      {Scope: "Sales", Metrics: strings.Repeat("m", MaxMetricsLength+1)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			err := validator.Validate(input)
			if !errors.Is(err, ErrInvalidReport) {
				t.Fatalf("expected ErrInvalidReport, got %v", err)
			}
		})
	}
}

func TestJSONSchemaValidatorCompilesOnce(t *testing.T) {
	validator := NewJSONSchemaValidator()
	_ = validator.Validate(ReportInput{Scope: "a", Metrics: "b"})
	first := validator.schema
	_ = validator.Validate(ReportInput{Scope: "c", Metrics: "d"})
	if first == nil || validator.schema != first {
		t.Fatalf("expected compiled schema to be reused")
	}
}
