// internal/query/compiler.go
package query

import (
	"strings"
	"time"

	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/models"
)

const listLimit = 10

// Options describes optional schema features. Task status, priority and tag
// columns exist only in some deployments, so their filters are off by default.
type Options struct {
	TaskDescription bool
	TaskStatus      bool
	TaskPriority    bool
	TaskTags        bool
}

func DefaultOptions() Options {
	return Options{TaskDescription: true}
}

type compileFunc func(c *Compiler, entities models.EntityDictionary) (*Compiled, error)

var registry = map[models.Intent]compileFunc{
	models.IntentSearchPerson: (*Compiler).searchPerson,
	models.IntentSearchEvent:  (*Compiler).searchEvent,
	models.IntentFindBirthday: (*Compiler).findBirthday,
	models.IntentCheckTask:    (*Compiler).checkTask,
}

// Compiler turns an intent and its entities into a parameterized query. It
// holds no per-request state and is safe for concurrent use.
type Compiler struct {
	options Options
	logger  logger.Logger
	now     func() time.Time
}

func NewCompiler(options Options, log logger.Logger) *Compiler {
	return &Compiler{
		options: options,
		logger:  log.WithFields(map[string]interface{}{"component": "query-compiler"}),
		now:     time.Now,
	}
}

// WithClock returns a copy of the compiler that resolves dates against now.
func (c *Compiler) WithClock(now func() time.Time) *Compiler {
	clone := *c
	clone.now = now
	return &clone
}

func (c *Compiler) Compile(intent string, entities models.EntityDictionary) (*Compiled, error) {
	fn, ok := registry[models.Intent(strings.TrimSpace(intent))]
	if !ok {
		return nil, errors.NewUnsupportedIntentError(intent)
	}
	if entities == nil {
		entities = models.EntityDictionary{}
	}
	return fn(c, entities)
}

// SupportedIntents lists the intents with a registered compiler.
func SupportedIntents() []models.Intent {
	out := make([]models.Intent, 0, len(registry))
	for _, intent := range models.KnownIntents {
		if _, ok := registry[intent]; ok {
			out = append(out, intent)
		}
	}
	return out
}

func (c *Compiler) today() time.Time { return c.now() }
