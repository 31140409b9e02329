// internal/workers/nlu/parse-user-intent/models.go
package parseuserintent

import "staff-assistant/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Entities   []models.Entity `json:"entities"`
}
