package app

import (
	"fmt"
	"time"

	"staff-assistant/internal/common/config"
	apperrors "staff-assistant/internal/common/errors"
	answerquestion "staff-assistant/internal/workers/assistant/answer-question"
	querypostgresql "staff-assistant/internal/workers/data-access/query-postgresql"
	parseuserintent "staff-assistant/internal/workers/nlu/parse-user-intent"
	"staff-assistant/pkg/registry"
)

type activityDef struct {
	taskType     string
	displayName  string
	description  string
	category     string
	inputSchema  string
	outputSchema string
	errorCodes   []apperrors.ErrorCode
	tags         []string
}

var activityDefs = []activityDef{
	{
		taskType:     parseuserintent.TaskType,
		displayName:  "Parse User Intent",
		description:  "Sends the question to the NLU server and returns the intent with its entities.",
		category:     "nlu",
		inputSchema:  parseuserintent.InputSchema,
		outputSchema: parseuserintent.OutputSchema,
		errorCodes: []apperrors.ErrorCode{
			apperrors.ErrCodeInvalidQuestion,
			apperrors.ErrCodeNLUUnavailable,
			apperrors.ErrCodeNLUTimeout,
			apperrors.ErrCodeNLUInvalidResponse,
		},
		tags: []string{"rasa", "redis"},
	},
	{
		taskType:     querypostgresql.TaskType,
		displayName:  "Query Staff Data",
		description:  "Compiles an intent and its entities into a parameterized query and returns typed rows.",
		category:     "data-access",
		inputSchema:  querypostgresql.InputSchema,
		outputSchema: querypostgresql.OutputSchema,
		errorCodes: []apperrors.ErrorCode{
			apperrors.ErrCodeUnsupportedIntent,
			apperrors.ErrCodeMissingEntity,
			apperrors.ErrCodeInsufficientCriteria,
			apperrors.ErrCodeDatabaseConnectionFailed,
			apperrors.ErrCodeQueryExecutionFailed,
			apperrors.ErrCodeQueryTimeout,
		},
		tags: []string{"postgresql"},
	},
	{
		taskType:     answerquestion.TaskType,
		displayName:  "Answer Staff Question",
		description:  "Runs the whole pipeline and returns the HTML reply for a chat message.",
		category:     "assistant",
		inputSchema:  answerquestion.InputSchema,
		outputSchema: answerquestion.OutputSchema,
		errorCodes: []apperrors.ErrorCode{
			apperrors.ErrCodeInvalidQuestion,
			apperrors.ErrCodeNLUUnavailable,
			apperrors.ErrCodeNLUTimeout,
			apperrors.ErrCodeDatabaseConnectionFailed,
			apperrors.ErrCodeQueryExecutionFailed,
			apperrors.ErrCodeQueryTimeout,
		},
		tags: []string{"rasa", "postgresql", "html"},
	},
}

// Activities describes the job workers this service registers, with timeouts
// and retries taken from the workers section of cfg.
func Activities(cfg *config.Config, now time.Time) (*registry.ActivityRegistry, error) {
	reg := &registry.ActivityRegistry{
		Version:     cfg.App.Version,
		LastUpdated: now.Format(time.RFC3339),
		Activities:  make([]registry.Activity, 0, len(activityDefs)),
	}

	for _, def := range activityDefs {
		input, err := registry.SchemaMap(def.inputSchema)
		if err != nil {
			return nil, fmt.Errorf("%s input: %w", def.taskType, err)
		}
		output, err := registry.SchemaMap(def.outputSchema)
		if err != nil {
			return nil, fmt.Errorf("%s output: %w", def.taskType, err)
		}

		codes := make([]string, len(def.errorCodes))
		for i, code := range def.errorCodes {
			codes[i] = string(code)
		}

		wcfg := config.GetWorkerConfig(cfg, def.taskType)
		reg.Activities = append(reg.Activities, registry.Activity{
			ID:                   def.taskType,
			DisplayName:          def.displayName,
			Description:          def.description,
			Category:             def.category,
			Version:              cfg.App.Version,
			TaskType:             def.taskType,
			ImplementationStatus: "completed",
			InputSchema:          input,
			OutputSchema:         output,
			ErrorCodes:           codes,
			Timeout:              config.GetDuration(wcfg.Timeout).String(),
			Retries:              wcfg.MaxRetries,
			Enabled:              wcfg.Enabled,
			Tags:                 def.tags,
		})
	}
	return reg, reg.Validate()
}
