package querypostgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"staff-assistant/internal/common/database"
	apperrors "staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/common/metrics"
	"staff-assistant/internal/models"
	"staff-assistant/internal/normalize"
	"staff-assistant/internal/query"
)

const (
	TaskType = "query-staff-data"
)

// Fetcher runs a parameterized query and hands the rows to scan.
type Fetcher interface {
	Fetch(ctx context.Context, sql string, args []interface{}, scan database.ScanFunc) error
}

// Handler normalizes entities, compiles the intent into SQL and fetches typed rows.
type Handler struct {
	config     *Config
	compiler   *query.Compiler
	normalizer *normalize.Normalizer
	fetcher    Fetcher
	logger     logger.Logger
}

func NewHandler(config *Config, compiler *query.Compiler, normalizer *normalize.Normalizer, fetcher Fetcher, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		compiler:   compiler,
		normalizer: normalizer,
		fetcher:    fetcher,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if v := inputSchema.ValidateBytes([]byte(job.Variables)); !v.Valid {
		h.failJob(client, job, "VALIDATION_FAILED", v.Error())
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout+time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, string(apperrors.CodeOf(err)), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	start := time.Now()
	rows, err := h.Query(ctx, input.Intent, input.Entities)
	if err != nil {
		return nil, err
	}
	return &Output{
		Kind:               rows.Kind(),
		Rows:               rows,
		RowCount:           rows.Len(),
		QueryExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

// Query compiles and runs one request. Compilation failures are returned as
// bad-request StandardErrors; database failures as DATABASE or QUERY errors.
func (h *Handler) Query(ctx context.Context, intent string, ents []models.Entity) (models.RowSet, error) {
	dict := models.NewEntityDictionary(h.normalizer.Entities(ents))

	compiled, err := h.compiler.Compile(intent, dict)
	if err != nil {
		metrics.CompileFailures.WithLabelValues(intent, string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	var rows models.RowSet
	start := time.Now()
	err = h.fetcher.Fetch(ctx, compiled.SQL, compiled.Args, func(r *sql.Rows) error {
		var scanErr error
		rows, scanErr = query.Scan(compiled.Kind, r)
		return scanErr
	})
	metrics.QueryDuration.WithLabelValues(string(compiled.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		h.logger.Error("query failed", map[string]interface{}{
			"intent": intent,
			"kind":   compiled.Kind,
			"error":  err.Error(),
		})
		return nil, wrapFetchError(intent, err)
	}

	metrics.QueryRows.WithLabelValues(string(compiled.Kind)).Observe(float64(rows.Len()))
	h.logger.Info("query executed", map[string]interface{}{
		"intent":   intent,
		"kind":     compiled.Kind,
		"rowCount": rows.Len(),
		"args":     len(compiled.Args),
	})
	return rows, nil
}

func wrapFetchError(intent string, err error) error {
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	if errors.Is(err, database.ErrQueryTimeout) {
		return apperrors.NewQueryTimeoutError(intent)
	}
	return apperrors.NewQueryExecutionFailedError(intent, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}
