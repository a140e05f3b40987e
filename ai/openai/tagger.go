package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/memlane/ai"
	"github.com/tmc/langchaingo/llms"
)

// Tagger implements ai.Tagger using OpenAI-compatible chat APIs.
type Tagger struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newTagger is an internal constructor that returns the concrete type.
func newTagger(config *ai.Config) (*Tagger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}

	return &Tagger{
		client:  client,
		timeout: config.RequestTimeout,
		logger:  slog.Default().With("component", "openai-tagger"),
	}, nil
}

// NewTagger creates a new tagger using the provided configuration.
//
// Returns ai.Tagger interface to enforce abstraction.
func NewTagger(config *ai.Config) (ai.Tagger, error) {
	return newTagger(config)
}

// Tag returns the model's raw answer to the tagging prompt.
// The answer is not validated here.
func (t *Tagger) Tag(ctx context.Context, text string) (string, error) {
	answer, err := generate(ctx, t.client, t.timeout, buildTagPrompt(), prepareInput(text),
		llms.WithTemperature(0.0))
	if err != nil {
		t.logger.Error("failed to generate tags", "err", err)
		return "", err
	}

	t.logger.Debug("received tag response", "response", answer)
	return answer, nil
}
