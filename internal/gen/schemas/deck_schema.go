package schemas

import "encoding/json"

const DeckSchemaName = "deck_output"

// DeckSchema is the strict json_schema payload sent to the Responses API for
// deck generation.
func DeckSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"concepts"},
		"properties": map[string]any{
			"concepts": map[string]any{
				"type":     "array",
				"minItems": 3,
				"maxItems": 7,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"title", "bullets", "example_possible", "example_hint"},
					"properties": map[string]any{
						"title": map[string]any{
							"type":      "string",
							"minLength": 1,
							"maxLength": 100,
						},
						"bullets": map[string]any{
							"type":     "array",
							"minItems": 5,
							"maxItems": 5,
							"items": map[string]any{
								"type":      "string",
								"minLength": 1,
								"maxLength": 160,
							},
						},
						"example_possible": map[string]any{"type": "boolean"},
						"example_hint": map[string]any{
							"type":      []string{"string", "null"},
							"maxLength": 200,
						},
					},
				},
			},
		},
	}
}

func DeckSchemaJSON() string {
	raw, _ := json.Marshal(DeckSchema())
	return string(raw)
}
