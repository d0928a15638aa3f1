package contract

// BuildReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the assembled receipt document. It is the outbound
// contract: every record persisted or returned over the API must satisfy it.
func BuildReceiptJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"raw_line":    map[string]any{"type": "string", "minLength": 1},
			"name":        map[string]any{"type": "string"},
			"quantity":    amountProp(),
			"unit":        map[string]any{"type": "string"},
			"unit_price":  amountProp(),
			"total_price": amountProp(),
			"vat_rate":    map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		},
		"required": []string{"raw_line", "name"},
	}

	merchant := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":    map[string]any{"type": "string", "minLength": 1},
			"address": map[string]any{"type": "string"},
			"vat_id":  map[string]any{"type": "string", "pattern": `^[A-Z0-9]{8,15}$`},
			"country": map[string]any{"type": "string", "minLength": 2, "maxLength": 2},
		},
		"required": []string{"country"},
	}

	info := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"datetime":        map[string]any{"type": "string", "format": "date-time"},
			"document_number": map[string]any{"type": "string"},
		},
	}

	totals := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"total":     amountProp(),
			"vat_rate":  map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"vat_total": amountProp(),
			"currency":  map[string]any{"type": "string", "enum": []string{"EUR"}},
		},
		"required": []string{"currency"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id": map[string]any{"type": "string"},
			"source": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"image_path":  map[string]any{"type": "string"},
					"captured_at": map[string]any{"type": "string"},
				},
			},
			"merchant": merchant,
			"receipt":  info,
			"totals":   totals,
			"items":    map[string]any{"type": "array", "items": item},
			"ocr": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"engine":     map[string]any{"type": "string"},
					"lang":       map[string]any{"type": "string"},
					"text":       map[string]any{"type": "string"},
					"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				},
			},
			"quality": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"preprocess_steps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"warnings":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
			"created_at": map[string]any{"type": "string"},
		},
		"required": []string{"merchant", "totals", "items"},
	}
}

func amountProp() map[string]any {
	return map[string]any{"type": "number"}
}
