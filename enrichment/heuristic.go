package enrichment

import (
	"context"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/tagging"
)

// Heuristic enriches text with the offline tagger only.
type Heuristic struct {
	tagger *tagging.Tagger
}

var _ Enricher = (*Heuristic)(nil)

// NewHeuristic creates a Heuristic enricher. A nil tagger uses tagging defaults.
func NewHeuristic(tagger *tagging.Tagger) *Heuristic {
	if tagger == nil {
		tagger = tagging.New()
	}
	return &Heuristic{tagger: tagger}
}

// Enrich always succeeds.
func (h *Heuristic) Enrich(ctx context.Context, text, titleHint string) Outcome {
	return Outcome{Kind: Success, Result: h.tagger.Process(text)}
}

// EmotionFromScore is the coarse three-bucket mapping used when a model gave
// no usable emotion label.
func EmotionFromScore(score float64) core.Emotion {
	switch {
	case score >= 0.5:
		return core.EmotionHappy
	case score <= -0.5:
		return core.EmotionSad
	default:
		return core.EmotionNeutral
	}
}
