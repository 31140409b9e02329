// Package normalize canonicalizes NLU entity values before they reach the
// query compiler.
package normalize

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/models"
)

const language = "russian"

// DefaultStemmedEntities lists the entity types whose values are free-form
// nouns matched by substring in the database.
var DefaultStemmedEntities = []string{
	models.EntityDepartment,
	models.EntityEventCategory,
	models.EntityEventName,
	models.EntityProject,
	models.EntityTaskName,
	models.EntityTaskStatus,
	models.EntityTaskPriority,
	models.EntityTaskTag,
}

// Date-like entities keep punctuation so "05.07" survives.
var lowercasedEntities = map[string]bool{
	models.EntityDate:              true,
	models.EntityDeadline:          true,
	models.EntityBirthdaySpecifier: true,
}

type Normalizer struct {
	stemmed map[string]bool
	logger  logger.Logger
}

// New builds a normalizer. An empty list falls back to DefaultStemmedEntities.
func New(stemmedEntities []string, log logger.Logger) *Normalizer {
	if len(stemmedEntities) == 0 {
		stemmedEntities = DefaultStemmedEntities
	}
	stemmed := make(map[string]bool, len(stemmedEntities))
	for _, e := range stemmedEntities {
		stemmed[strings.TrimSpace(e)] = true
	}
	return &Normalizer{
		stemmed: stemmed,
		logger:  log.WithFields(map[string]interface{}{"component": "entity-normalizer"}),
	}
}

// Entities returns a normalized copy. Null entities are passed through untouched.
func (n *Normalizer) Entities(entities []models.Entity) []models.Entity {
	out := make([]models.Entity, len(entities))
	for i, e := range entities {
		out[i] = e
		if e.Null {
			continue
		}
		out[i].Value = n.Value(e.Entity, e.Value)
	}
	return out
}

// Value normalizes a single entity value according to its type.
func (n *Normalizer) Value(entity, value string) string {
	switch {
	case n.stemmed[entity]:
		return n.stemPhrase(value)
	case lowercasedEntities[entity]:
		return strings.Join(strings.Fields(strings.ToLower(value)), " ")
	default:
		return strings.TrimSpace(value)
	}
}

func (n *Normalizer) stemPhrase(value string) string {
	words := strings.Fields(stripPunctuation(strings.ToLower(value)))
	for i, w := range words {
		stem, err := snowball.Stem(w, language, true)
		if err != nil || stem == "" {
			n.logger.Debug("Stemming skipped", map[string]interface{}{
				"word":  w,
				"error": err,
			})
			continue
		}
		words[i] = stem
	}
	return strings.Join(words, " ")
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
}
