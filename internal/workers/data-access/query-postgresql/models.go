// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "staff-assistant/internal/models"

type Input struct {
	Intent   string          `json:"intent"`
	Entities []models.Entity `json:"entities"`
}

type Output struct {
	Kind               models.ResultKind `json:"kind"`
	Rows               models.RowSet     `json:"rows"`
	RowCount           int               `json:"rowCount"`
	QueryExecutionTime int64             `json:"queryExecutionTime"` // milliseconds
}
