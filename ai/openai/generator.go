package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/poiesic/memlane/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyResponse is returned when a model answers with no content.
var ErrEmptyResponse = errors.New("model returned no content")

// newChatModel creates a chat client against the generation host.
func newChatModel(config *ai.Config) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(token(config)),
		openai.WithModel(config.GenerationModel),
	)
}

// generate sends a system prompt and user text and returns the first choice's content.
func generate(ctx context.Context, client llms.Model, timeout time.Duration, systemPrompt, text string, opts ...llms.CallOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	response, err := client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrEmptyResponse
	}
	answer := strings.TrimSpace(response.Choices[0].Content)
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}
