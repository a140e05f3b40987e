package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/memlane/ai"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/tagging"
)

// Adapter enriches text through external models with per-piece heuristic fallback.
// The summary and the tags/emotion are requested independently, so one result
// may mix model and heuristic values. Sentiment always comes from the heuristic scorer.
type Adapter struct {
	summarizer ai.Summarizer
	tagger     ai.Tagger
	heuristic  *tagging.Tagger
	logger     *slog.Logger
}

var _ Enricher = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithHeuristicTagger sets the tagger used for fallback values.
func WithHeuristicTagger(tagger *tagging.Tagger) Option {
	return func(a *Adapter) error {
		if tagger != nil {
			a.heuristic = tagger
		}
		return nil
	}
}

// NewAdapter creates an Adapter over the given model services.
func NewAdapter(summarizer ai.Summarizer, tagger ai.Tagger, opts ...Option) (*Adapter, error) {
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}
	if tagger == nil {
		return nil, ErrTaggerRequired
	}

	a := &Adapter{
		summarizer: summarizer,
		tagger:     tagger,
		heuristic:  tagging.New(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "enrichment-adapter")
	return a, nil
}

// Enrich runs the summarizer and the tagger over text.
func (a *Adapter) Enrich(ctx context.Context, text, titleHint string) Outcome {
	fallback := a.heuristic.Process(text)
	result := core.Enrichment{
		Summary:        fallback.Summary,
		Keywords:       fallback.Keywords,
		SentimentScore: fallback.SentimentScore,
	}

	var reasons []string
	var transportErrs []error

	summary, err := a.summarizer.Summarize(ctx, text, titleHint)
	switch {
	case err != nil:
		transportErrs = append(transportErrs, fmt.Errorf("summarizer: %w", err))
		reasons = append(reasons, "summary: model unavailable")
	case strings.TrimSpace(summary) == "":
		reasons = append(reasons, "summary: "+ErrEmptySummary.Error())
	default:
		result.Summary = clipSummary(summary)
	}

	raw, err := a.tagger.Tag(ctx, text)
	if err != nil {
		transportErrs = append(transportErrs, fmt.Errorf("tagger: %w", err))
		reasons = append(reasons, "tags: model unavailable")
	} else if parsed, parseErr := ParseTagResponse(raw); parseErr != nil {
		a.logger.Warn("discarding tag response", "response", raw, "err", parseErr)
		reasons = append(reasons, "tags: "+parseErr.Error())
	} else {
		result.Keywords = core.NormalizeTags(parsed.Tags)
		if limit := a.heuristic.KeywordLimit(); len(result.Keywords) > limit {
			result.Keywords = result.Keywords[:limit]
		}
		if emotion, ok := core.ParseEmotion(parsed.Emotion); ok {
			result.Emotion = emotion
		} else {
			reasons = append(reasons, fmt.Sprintf("emotion: %q is not a known label", parsed.Emotion))
		}
	}

	if result.Emotion == "" {
		result.Emotion = EmotionFromScore(result.SentimentScore)
	}

	outcome := Outcome{
		Kind:    Success,
		Result:  result,
		Reasons: reasons,
		Err:     errors.Join(transportErrs...),
	}
	switch {
	case len(transportErrs) == 2:
		outcome.Kind = Failed
	case len(reasons) > 0:
		outcome.Kind = DegradedHeuristic
	}

	if outcome.Kind != Success {
		a.logger.Info("enrichment degraded", "kind", outcome.Kind, "reasons", reasons, "err", outcome.Err)
	}
	return outcome
}

func clipSummary(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= core.MaxSummaryLength {
		return s
	}
	return string([]rune(s)[:core.MaxSummaryLength])
}
