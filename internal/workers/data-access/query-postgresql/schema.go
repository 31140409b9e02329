package querypostgresql

import "staff-assistant/internal/common/validation"

const InputSchema = `{
	"type": "object",
	"required": ["intent"],
	"properties": {
		"intent": {"type": "string", "minLength": 1},
		"entities": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["entity"],
				"properties": {
					"entity": {"type": "string"},
					"value": {"type": ["string", "number", "null"]}
				}
			}
		}
	}
}`

const OutputSchema = `{
	"type": "object",
	"required": ["kind", "rows", "rowCount"],
	"properties": {
		"kind": {"enum": ["PersonInfo", "BirthdayList", "TaskList", "EventList"]},
		"rows": {"type": ["array", "null"]},
		"rowCount": {"type": "integer", "minimum": 0},
		"queryExecutionTime": {"type": "integer"}
	}
}`

var inputSchema = validation.MustCompile(TaskType+"-input", InputSchema)
