package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/memlane/ai"
	"github.com/poiesic/memlane/core"
	"github.com/tmc/langchaingo/llms"
)

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client:  client,
		timeout: config.RequestTimeout,
		logger:  slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize asks the model for a short summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text, titleHint string) (string, error) {
	input := prepareInput(text)
	if titleHint != "" {
		input = fmt.Sprintf(titleHintTemplate, titleHint, input)
	}

	summary, err := generate(ctx, s.client, s.timeout, buildSummaryPrompt(core.MaxSummaryLength), input,
		llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("failed to generate summary", "err", err)
		return "", err
	}

	s.logger.Debug("generated summary", "length", len(summary))
	return summary, nil
}
