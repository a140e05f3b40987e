package mock

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, returns the first 120 runes of the text.
	SummarizeFunc func(ctx context.Context, text, titleHint string) (string, error)

	callCount atomic.Int64
}

// NewMockSummarizer creates a mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a deterministic summary.
func (m *MockSummarizer) Summarize(ctx context.Context, text, titleHint string) (string, error) {
	m.callCount.Add(1)

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text, titleHint)
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > 120 {
		text = string([]rune(text)[:120])
	}
	return text, nil
}

// WithSummarizeFunc sets custom behavior for Summarize.
func (m *MockSummarizer) WithSummarizeFunc(fn func(ctx context.Context, text, titleHint string) (string, error)) *MockSummarizer {
	m.SummarizeFunc = fn
	return m
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return int(m.callCount.Load())
}

// MockTagger is a test double for ai.Tagger.
// It allows custom behavior injection via function fields.
type MockTagger struct {
	// TagFunc is called by Tag if set.
	// If nil, answers with the first three words of the text and "neutral".
	TagFunc func(ctx context.Context, text string) (string, error)

	callCount atomic.Int64
}

// NewMockTagger creates a mock tagger with default behavior.
func NewMockTagger() *MockTagger {
	return &MockTagger{}
}

// Tag returns a well-formed tag response by default.
func (m *MockTagger) Tag(ctx context.Context, text string) (string, error) {
	m.callCount.Add(1)

	if m.TagFunc != nil {
		return m.TagFunc(ctx, text)
	}

	answer := make([]string, 0, 4)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" {
			continue
		}
		answer = append(answer, word)
		if len(answer) == 3 {
			break
		}
	}
	for len(answer) < 3 {
		answer = append(answer, "misc")
	}
	answer = append(answer, "neutral")

	data, err := json.Marshal(answer)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WithTagFunc sets custom behavior for Tag.
func (m *MockTagger) WithTagFunc(fn func(ctx context.Context, text string) (string, error)) *MockTagger {
	m.TagFunc = fn
	return m
}

// CallCount returns the number of times Tag was called.
func (m *MockTagger) CallCount() int {
	return int(m.callCount.Load())
}
