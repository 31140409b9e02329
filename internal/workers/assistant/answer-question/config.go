// internal/workers/assistant/answer-question/config.go
package answerquestion

import (
	"time"

	"staff-assistant/internal/common/config"
)

type Config struct {
	// Timeout bounds one whole question: parse, query and render.
	Timeout time.Duration
}

func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{Timeout: timeout}
}
