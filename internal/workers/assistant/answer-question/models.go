// internal/workers/assistant/answer-question/models.go
package answerquestion

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Answer   string `json:"answer"`
	Intent   string `json:"intent"`
	RowCount int    `json:"rowCount"`
}

// Outcome labels for metrics and logs.
const (
	OutcomeAnswered    = "answered"
	OutcomeNotFound    = "not_found"
	OutcomeUnsupported = "unsupported"
	OutcomeBadRequest  = "bad_request"
	OutcomeNLUError    = "nlu_error"
	OutcomeError       = "error"
)

// Reply is the full result of answering one question. Err is set for
// technical failures only; Text is always a message fit for the user.
type Reply struct {
	Text     string
	Intent   string
	RowCount int
	Outcome  string
	Err      error
}
