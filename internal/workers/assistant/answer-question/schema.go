package answerquestion

import "staff-assistant/internal/common/validation"

const InputSchema = `{
	"type": "object",
	"required": ["question"],
	"properties": {
		"question": {"type": "string"}
	}
}`

const OutputSchema = `{
	"type": "object",
	"required": ["answer", "rowCount"],
	"properties": {
		"answer": {"type": "string", "minLength": 1},
		"intent": {"type": "string"},
		"rowCount": {"type": "integer", "minimum": 0}
	}
}`

var inputSchema = validation.MustCompile(TaskType+"-input", InputSchema)
