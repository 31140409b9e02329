package parseuserintent

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	apphttp "staff-assistant/internal/common/http"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/common/metrics"
	"staff-assistant/internal/common/validation"
	"staff-assistant/internal/models"
)

const (
	TaskType       = "parse-user-intent"
	cacheKeyPrefix = "nlu:parse:"
)

var (
	ErrNLUUnavailable     = errors.New("NLU_UNAVAILABLE")
	ErrNLUTimeout         = errors.New("NLU_TIMEOUT")
	ErrNLUInvalidResponse = errors.New("NLU_INVALID_RESPONSE")
	ErrEmptyQuestion      = errors.New("INVALID_QUESTION")
)

var parseSchema = validation.MustCompile("nlu-parse", validation.NLUParseSchema)

// Handler sends user text to the Rasa parse endpoint. Successful parses are
// cached in Redis when a client is configured.
type Handler struct {
	config *Config
	client *apphttp.Client
	redis  redis.Cmdable
	logger logger.Logger
}

// NewHandler builds the handler; rdb may be nil to disable caching.
func NewHandler(config *Config, rdb redis.Cmdable, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: apphttp.NewClient(config.Timeout),
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if v := inputSchema.ValidateBytes([]byte(job.Variables)); !v.Valid {
		h.failJob(client, job, fmt.Errorf("%w: %s", ErrEmptyQuestion, v.Error()), 0)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrEmptyQuestion, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.jobTimeout())
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrNLUTimeout) || errors.Is(err, ErrNLUUnavailable) {
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.Parse(ctx, input.Question)
	if err != nil {
		return nil, err
	}
	return &Output{
		Intent:     result.Intent.Name,
		Confidence: result.Intent.Confidence,
		Entities:   result.Entities,
	}, nil
}

// Parse returns the intent and entities for text. Predictions below the
// configured confidence come back with an empty intent name.
func (h *Handler) Parse(ctx context.Context, text string) (*models.ParseResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuestion
	}

	key := cacheKey(text)
	result, cached := h.fromCache(ctx, key)
	if !cached {
		var err error
		if result, err = h.request(ctx, text); err != nil {
			return nil, err
		}
		h.toCache(ctx, key, result)
	}

	if h.config.MinConfidence > 0 && result.Intent.Confidence < h.config.MinConfidence {
		h.logger.Info("intent below confidence threshold", map[string]interface{}{
			"intent":     result.Intent.Name,
			"confidence": result.Intent.Confidence,
			"threshold":  h.config.MinConfidence,
		})
		result.Intent.Name = ""
	}

	h.logger.Info("intent parsed", map[string]interface{}{
		"intent":      result.Intent.Name,
		"confidence":  result.Intent.Confidence,
		"entityCount": len(result.Entities),
		"cached":      cached,
	})
	return result, nil
}

func (h *Handler) request(ctx context.Context, text string) (*models.ParseResult, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	var resp *apphttp.Response
	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.NLURequests.WithLabelValues("timeout").Inc()
				return nil, ErrNLUTimeout
			}
		}

		resp, lastErr = h.client.PostJSON(ctx, h.config.ParseURL, map[string]string{"text": text})
		if ctx.Err() != nil || isTimeout(lastErr) {
			metrics.NLURequests.WithLabelValues("timeout").Inc()
			return nil, ErrNLUTimeout
		}
		if lastErr == nil {
			if resp.OK() {
				break
			}
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
		h.logger.Warn("NLU request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}

	if resp == nil {
		metrics.NLURequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrNLUUnavailable, lastErr)
	}

	if v := parseSchema.ValidateBytes(resp.Body); !v.Valid {
		metrics.NLURequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNLUInvalidResponse, v.Error())
	}

	var result models.ParseResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		metrics.NLURequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: decode error: %v", ErrNLUInvalidResponse, err)
	}
	result.Entities = dropNullEntities(result.Entities)

	metrics.NLURequests.WithLabelValues("ok").Inc()
	return &result, nil
}

func (h *Handler) fromCache(ctx context.Context, key string) (*models.ParseResult, bool) {
	if h.redis == nil {
		return nil, false
	}
	val, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("NLU cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var result models.ParseResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		h.logger.Warn("Discarding malformed NLU cache entry", map[string]interface{}{"key": key})
		return nil, false
	}
	metrics.NLURequests.WithLabelValues("cached").Inc()
	return &result, true
}

func (h *Handler) toCache(ctx context.Context, key string, result *models.ParseResult) {
	if h.redis == nil || h.config.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("NLU cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func cacheKey(text string) string {
	sum := sha1.Sum([]byte(strings.ToLower(text)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func dropNullEntities(in []models.Entity) []models.Entity {
	out := make([]models.Entity, 0, len(in))
	for _, e := range in {
		if !e.Null {
			out = append(out, e)
		}
	}
	return out
}

// jobTimeout leaves headroom over the request deadline, which covers every retry.
func (h *Handler) jobTimeout() time.Duration {
	return h.config.Timeout + time.Second
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
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

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	for _, sentinel := range []error{ErrNLUTimeout, ErrNLUUnavailable, ErrNLUInvalidResponse, ErrEmptyQuestion} {
		if errors.Is(err, sentinel) {
			errorCode = sentinel.Error()
			break
		}
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}
