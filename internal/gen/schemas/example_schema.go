package schemas

import "encoding/json"

const ExampleSchemaName = "example_output"

// ExampleSchema is the strict json_schema payload for worked-example
// generation.
func ExampleSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"example", "steps", "pitfalls", "source_refs"},
		"properties": map[string]any{
			"example": map[string]any{
				"type":      "string",
				"minLength": 1,
				"maxLength": 2000,
			},
			"steps": map[string]any{
				"type":     []string{"array", "null"},
				"maxItems": 10,
				"items": map[string]any{
					"type":      "string",
					"minLength": 1,
					"maxLength": 300,
				},
			},
			"pitfalls": map[string]any{
				"type":     []string{"array", "null"},
				"maxItems": 5,
				"items": map[string]any{
					"type":      "string",
					"minLength": 1,
					"maxLength": 200,
				},
			},
			"source_refs": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type":      "string",
					"minLength": 1,
					"maxLength": 50,
				},
			},
		},
	}
}

func ExampleSchemaJSON() string {
	raw, _ := json.Marshal(ExampleSchema())
	return string(raw)
}
