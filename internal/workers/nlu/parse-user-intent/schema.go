package parseuserintent

import "staff-assistant/internal/common/validation"

// Job variables carry the whole process scope, so extra properties are allowed.
const InputSchema = `{
	"type": "object",
	"required": ["question"],
	"properties": {
		"question": {"type": "string", "minLength": 1, "maxLength": 1000}
	}
}`

const OutputSchema = `{
	"type": "object",
	"required": ["intent", "confidence", "entities"],
	"properties": {
		"intent": {"type": "string"},
		"confidence": {"type": "number"},
		"entities": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["entity", "value"],
				"properties": {
					"entity": {"type": "string"},
					"value": {"type": "string"}
				}
			}
		}
	}
}`

var inputSchema = validation.MustCompile(TaskType+"-input", InputSchema)
