// Package httpapi exposes the assistant over HTTP alongside the health and
// metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"staff-assistant/internal/common/config"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/common/metrics"
	"staff-assistant/internal/common/validation"
	answerquestion "staff-assistant/internal/workers/assistant/answer-question"
)

const (
	Channel = "http"

	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 64 << 10
	checkTimeout    = 2 * time.Second
)

var askSchema = validation.MustCompile("ask-request", validation.AskRequestSchema)

// Answerer produces the reply for one question.
type Answerer interface {
	Respond(ctx context.Context, channel, question string) *answerquestion.Reply
}

// Checker is a dependency probed by /ready.
type Checker interface {
	Ping(ctx context.Context) error
}

type askRequest struct {
	Question string `json:"question"`
	ChatID   string `json:"chat_id,omitempty"`
}

type askResponse struct {
	RequestID string `json:"requestId"`
	Answer    string `json:"answer"`
	Intent    string `json:"intent,omitempty"`
	RowCount  int    `json:"rowCount"`
}

type errorResponse struct {
	RequestID string                       `json:"requestId,omitempty"`
	Error     string                       `json:"error"`
	Details   []validation.ValidationError `json:"details,omitempty"`
}

type Server struct {
	router   *mux.Router
	server   *http.Server
	answerer Answerer
	checks   map[string]Checker
	logger   logger.Logger
}

func NewServer(cfg config.HTTPConfig, answerer Answerer, checks map[string]Checker, log logger.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		answerer: answerer,
		checks:   checks,
		logger:   log.WithFields(map[string]interface{}{"component": "http-api"}),
	}

	s.router.Use(s.recoverMiddleware, requestIDMiddleware)
	s.router.HandleFunc("/api/v1/ask", s.handleAsk).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.server.Addr})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())
	metrics.ChatMessages.WithLabelValues(Channel, "in").Inc()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "READ_FAILED"})
		return
	}
	if len(body) > maxBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{RequestID: requestID, Error: "BODY_TOO_LARGE"})
		return
	}

	if v := askSchema.ValidateBytes(body); !v.Valid {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			RequestID: requestID,
			Error:     "VALIDATION_FAILED",
			Details:   v.Errors,
		})
		return
	}

	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "INVALID_JSON"})
		return
	}

	reply := s.answerer.Respond(r.Context(), Channel, req.Question)
	s.logger.Info("Question answered over HTTP", map[string]interface{}{
		"requestId": requestID,
		"chatId":    req.ChatID,
		"intent":    reply.Intent,
		"outcome":   reply.Outcome,
	})

	metrics.ChatMessages.WithLabelValues(Channel, "out").Inc()
	writeJSON(w, http.StatusOK, askResponse{
		RequestID: requestID,
		Answer:    reply.Text,
		Intent:    reply.Intent,
		RowCount:  reply.RowCount,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// recoverMiddleware turns a panic in a handler into a 500 response.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", map[string]interface{}{
					"panic":  rec,
					"method": r.Method,
					"url":    r.URL.String(),
					"stack":  string(debug.Stack()),
				})
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "INTERNAL_ERROR"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// requestIDMiddleware propagates X-Request-ID, generating one when absent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the request ID stored by the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
