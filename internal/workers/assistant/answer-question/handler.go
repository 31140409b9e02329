package answerquestion

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/common/metrics"
	"staff-assistant/internal/common/observability"
	"staff-assistant/internal/models"
	"staff-assistant/internal/render"
	parseuserintent "staff-assistant/internal/workers/nlu/parse-user-intent"
)

const (
	TaskType = "answer-staff-question"

	// ChannelDirect labels questions asked through Answer without a transport.
	ChannelDirect = "direct"
	ChannelZeebe  = "zeebe"
)

const (
	MsgNLUFailure       = "Извините, не удалось связаться с сервисом распознавания. Попробуйте позже."
	MsgUnsupported      = "Не удалось обработать ваш запрос. Попробуйте переформулировать вопрос."
	MsgBadRequestPrefix = "Не удалось обработать ваш запрос: "
	MsgInternalError    = "Произошла внутренняя ошибка. Пожалуйста, попробуйте позже."
)

// Parser turns a question into an intent and entities.
type Parser interface {
	Parse(ctx context.Context, text string) (*models.ParseResult, error)
}

// Querier compiles an intent with its entities and fetches the rows.
type Querier interface {
	Query(ctx context.Context, intent string, entities []models.Entity) (models.RowSet, error)
}

// Handler answers free-text questions: NLU parse, query, render. Every
// failure ends in a user-facing message.
type Handler struct {
	config        *Config
	parser        Parser
	querier       Querier
	observability *observability.Observability
	errorHandler  *apperrors.ErrorHandler
	logger        logger.Logger
}

// NewHandler builds the handler; obs may be nil.
func NewHandler(config *Config, parser Parser, querier Querier, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:        config,
		parser:        parser,
		querier:       querier,
		observability: obs,
		errorHandler:  apperrors.NewErrorHandler(log),
		logger:        log,
	}
}

// Answer returns the reply text for question. It never returns an empty string.
func (h *Handler) Answer(ctx context.Context, question string) string {
	return h.Respond(ctx, ChannelDirect, question).Text
}

// Respond answers question and reports how it went. channel only labels metrics.
func (h *Handler) Respond(ctx context.Context, channel, question string) *Reply {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	reply := h.respond(ctx, question)

	metrics.QuestionsTotal.WithLabelValues(intentLabel(reply.Intent), reply.Outcome, channel).Inc()
	h.observability.RecordAnswer(ctx, intentLabel(reply.Intent), reply.Outcome)

	fields := map[string]interface{}{
		"channel":  channel,
		"intent":   reply.Intent,
		"outcome":  reply.Outcome,
		"rowCount": reply.RowCount,
	}
	if reply.Err != nil {
		fields["error"] = reply.Err.Error()
		h.logger.Error("Question failed", fields)
	} else {
		h.logger.Info("Question answered", fields)
	}
	return reply
}

func (h *Handler) respond(ctx context.Context, question string) *Reply {
	start := time.Now()
	parsed, err := h.parser.Parse(ctx, question)
	h.observability.RecordStage(ctx, "parse", time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, parseuserintent.ErrEmptyQuestion) {
			return &Reply{Text: MsgUnsupported, Outcome: OutcomeUnsupported}
		}
		return &Reply{Text: MsgNLUFailure, Outcome: OutcomeNLUError, Err: nluError(err)}
	}

	intent := parsed.Intent.Name
	if !models.Intent(intent).IsKnown() {
		h.logger.Info("Unsupported intent", map[string]interface{}{
			"intent":     intent,
			"confidence": parsed.Intent.Confidence,
		})
		return &Reply{Text: MsgUnsupported, Intent: intent, Outcome: OutcomeUnsupported}
	}

	start = time.Now()
	rows, err := h.querier.Query(ctx, intent, parsed.Entities)
	h.observability.RecordStage(ctx, "query", time.Since(start), err == nil)
	if err != nil {
		return queryFailure(intent, err)
	}

	start = time.Now()
	text := render.Render(rows)
	h.observability.RecordStage(ctx, "render", time.Since(start), true)

	outcome := OutcomeAnswered
	if rows.Len() == 0 {
		outcome = OutcomeNotFound
	}
	return &Reply{Text: text, Intent: intent, RowCount: rows.Len(), Outcome: outcome}
}

func queryFailure(intent string, err error) *Reply {
	switch {
	case apperrors.CodeOf(err) == apperrors.ErrCodeUnsupportedIntent:
		return &Reply{Text: MsgUnsupported, Intent: intent, Outcome: OutcomeUnsupported}
	case apperrors.IsBadRequest(err):
		return &Reply{
			Text:    MsgBadRequestPrefix + html.EscapeString(apperrors.Reason(err)),
			Intent:  intent,
			Outcome: OutcomeBadRequest,
		}
	}
	return &Reply{Text: MsgInternalError, Intent: intent, Outcome: OutcomeError, Err: err}
}

// nluError converts the NLU worker's sentinels into StandardErrors so the job
// error handler can pick a retry budget.
func nluError(err error) error {
	switch {
	case errors.Is(err, parseuserintent.ErrNLUTimeout):
		return apperrors.NewNLUTimeoutError()
	case errors.Is(err, parseuserintent.ErrNLUInvalidResponse):
		return apperrors.NewNLUInvalidResponseError(err.Error())
	}
	return apperrors.NewNLUUnavailableError(err)
}

func intentLabel(intent string) string {
	if intent == "" {
		return "none"
	}
	return intent
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()

	var input Input
	if v := inputSchema.ValidateBytes([]byte(job.Variables)); !v.Valid {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeInvalidQuestion)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidQuestionError(v.Error()))
		return
	}
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeInvalidQuestion)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidQuestionError(err.Error()))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute answers a job's question. Technical failures that may succeed on a
// retry are returned as errors; everything else completes with a message.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	reply := h.Respond(ctx, ChannelZeebe, input.Question)
	if reply.Err != nil {
		if stdErr, ok := apperrors.AsStandardError(reply.Err); ok && stdErr.Retryable {
			return nil, reply.Err
		}
	}
	return &Output{
		Answer:   reply.Text,
		Intent:   reply.Intent,
		RowCount: reply.RowCount,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
