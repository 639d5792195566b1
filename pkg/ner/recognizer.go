// Package ner defines the named-entity recognition capability used by the
// contact matcher. The matcher depends only on the Recognizer interface; the
// regex implementation is the always-available fallback and the LLM-backed
// implementation is selected at startup when configured and usable.
package ner

import "context"

// Entity labels produced by recognizers.
const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
)

// Entity is one recognized span with its label.
type Entity struct {
	Text  string
	Label string
}

// Recognizer extracts labeled entities from free text.
type Recognizer interface {
	// Entities returns the recognized spans in text. Implementations must
	// not guess: an empty result is the correct answer for ambiguous input.
	Entities(ctx context.Context, text string) ([]Entity, error)

	// Name identifies the implementation for logging.
	Name() string
}
