package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultJSONSchema returns the JSON-Schema (draft 2020-12 subset) the
// serialized extraction result must satisfy. It guards the contract with
// downstream consumers.
func BuildResultJSONSchema() map[string]any {
	confidenceProp := map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}

	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    nullableNumber(),
			"unit_price":  nullableNumber(),
			"line_total":  nullableNumber(),
		},
		"required": []string{"description", "quantity", "unit_price", "line_total"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"success":         map[string]any{"type": "boolean"},
			"processing_time": map[string]any{"type": "number", "minimum": 0.0},
			"request_id":      map[string]any{"type": "string"},
			"extracted_data": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"line_items": map[string]any{
						"type":     "array",
						"items":    lineItem,
						"maxItems": 10,
					},
				},
			},
			"field_confidence": map[string]any{
				"type":                 "object",
				"additionalProperties": confidenceProp,
			},
			"math_validation": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"subtotal_tax_total_match": map[string]any{"type": "boolean"},
					"line_items_sum_match":     map[string]any{"type": "boolean"},
					"calculations_correct":     map[string]any{"type": "boolean"},
				},
				"required": []string{"subtotal_tax_total_match", "line_items_sum_match", "calculations_correct"},
			},
			"overall_confidence": confidenceProp,
			"missing_required_fields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{
			"success", "extracted_data", "field_confidence",
			"math_validation", "overall_confidence", "missing_required_fields",
		},
	}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}

// ValidateResultJSON validates serialized result bytes against the result schema.
func ValidateResultJSON(data []byte) error {
	return validateJSONAgainstSchema(BuildResultJSONSchema(), data)
}

func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
