// internal/models/nlu.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResult is the payload returned by the NLU service for one utterance.
type ParseResult struct {
	Text     string           `json:"text"`
	Intent   IntentPrediction `json:"intent"`
	Entities []Entity         `json:"entities"`
}

type IntentPrediction struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type Entity struct {
	Entity string `json:"entity"`
	Value  string `json:"value"`
	// Null is set when the service reported a null value; such entities are skipped.
	Null bool `json:"-"`
}

// UnmarshalJSON accepts string, numeric and null entity values.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw struct {
		Entity string          `json:"entity"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Entity = raw.Entity
	e.Value = ""
	e.Null = false

	value := bytes.TrimSpace(raw.Value)
	switch {
	case len(value) == 0 || bytes.Equal(value, []byte("null")):
		e.Null = true
	case value[0] == '"':
		if err := json.Unmarshal(value, &e.Value); err != nil {
			return fmt.Errorf("entity %q: %w", raw.Entity, err)
		}
	default:
		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(value))
		dec.UseNumber()
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("entity %q: unsupported value %s", raw.Entity, string(value))
		}
		e.Value = num.String()
	}
	return nil
}

// EntityDictionary maps an entity type to its values in first-seen order.
type EntityDictionary map[string][]string

func NewEntityDictionary(entities []Entity) EntityDictionary {
	dict := make(EntityDictionary, len(entities))
	for _, e := range entities {
		if e.Null || strings.TrimSpace(e.Entity) == "" {
			continue
		}
		dict[e.Entity] = append(dict[e.Entity], e.Value)
	}
	return dict
}

// First returns the first non-blank value for the entity type.
func (d EntityDictionary) First(entity string) (string, bool) {
	for _, v := range d[entity] {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// FirstOf returns the first value of the first entity type present, in argument order.
func (d EntityDictionary) FirstOf(entities ...string) (string, string, bool) {
	for _, entity := range entities {
		if v, ok := d.First(entity); ok {
			return entity, v, true
		}
	}
	return "", "", false
}
