package ner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const entityPrompt = `Extract named entities from the text below.
Respond with one entity per line in the form LABEL: text.
Use only the labels PERSON (a person's full name) and ORG (an organization name).
If there are no entities, respond with NONE.

Text:
%s`

// LLMRecognizer implements Recognizer on top of a chat model. Output is
// parsed line-by-line; anything that doesn't match the expected shape is
// dropped rather than guessed at.
type LLMRecognizer struct {
	model llms.Model
	log   *logrus.Entry
}

// NewLLMRecognizer builds the LLM-backed recognizer. It fails when the model
// client cannot be constructed (e.g. missing API key); callers fall back to
// the regex recognizer.
func NewLLMRecognizer(log *logrus.Entry) (*LLMRecognizer, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	model, err := openai.New()
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}
	return &LLMRecognizer{model: model, log: log}, nil
}

// Name implements Recognizer.
func (r *LLMRecognizer) Name() string { return "llm" }

// Entities implements Recognizer.
func (r *LLMRecognizer) Entities(ctx context.Context, text string) ([]Entity, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, r.model, fmt.Sprintf(entityPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("entity extraction call failed: %w", err)
	}

	var entities []Entity
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "NONE") {
			continue
		}
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		label = strings.ToUpper(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch label {
		case LabelPerson, LabelOrg:
			entities = append(entities, Entity{Text: value, Label: label})
		default:
			r.log.Debugf("Dropping unrecognized entity label %q", label)
		}
	}
	return entities, nil
}

// Select picks a Recognizer for the configured provider, degrading to the
// regex implementation with a warning when the LLM path is unavailable.
func Select(provider string, log *logrus.Entry) Recognizer {
	if provider == "llm" {
		rec, err := NewLLMRecognizer(log)
		if err == nil {
			log.Info("Using LLM entity recognizer")
			return rec
		}
		log.Warnf("LLM entity recognizer unavailable (%v), falling back to regex", err)
	}
	return NewRegexRecognizer()
}
