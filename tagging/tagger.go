package tagging

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/memlane/core"
)

const (
	singleSentenceLimit = 280
)

var wordPattern = regexp.MustCompile(`\p{L}+(?:['-]\p{L}+)*`)

// emotionLadder is evaluated top to bottom; the first threshold the score
// meets wins, otherwise the item is reflective.
var emotionLadder = []struct {
	emotion   core.Emotion
	threshold float64
}{
	{core.EmotionExcited, 0.6},
	{core.EmotionHappy, 0.2},
	{core.EmotionNeutral, -0.1},
	{core.EmotionThoughtful, -0.3},
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithKeywordLimit sets the maximum number of keywords. Values outside
// (0, core.DefaultKeywordLimit] are ignored.
func WithKeywordLimit(limit int) Option {
	return func(t *Tagger) {
		if limit > 0 && limit <= core.DefaultKeywordLimit {
			t.keywordLimit = limit
		}
	}
}

// Tagger is the heuristic enrichment engine.
type Tagger struct {
	keywordLimit int
}

// New creates a Tagger.
func New(opts ...Option) *Tagger {
	t := &Tagger{keywordLimit: core.DefaultKeywordLimit}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// KeywordLimit returns the configured keyword limit.
func (t *Tagger) KeywordLimit() int {
	return t.keywordLimit
}

// Process derives the full enrichment of text. It never fails; empty input
// yields an empty summary, no keywords, a zero score and the neutral emotion.
func (t *Tagger) Process(text string) core.Enrichment {
	score := Sentiment(text)
	return core.Enrichment{
		Summary:        Summarize(text),
		Keywords:       t.Keywords(text),
		Emotion:        EmotionForScore(score),
		SentimentScore: score,
	}
}

// Summarize returns the first sentence truncated to 280 runes, or the first
// two sentences joined and truncated to core.MaxSummaryLength runes.
func Summarize(text string) string {
	sentences := splitSentences(strings.TrimSpace(text))
	switch len(sentences) {
	case 0:
		return ""
	case 1:
		return truncateRunes(sentences[0], singleSentenceLimit)
	default:
		return truncateRunes(sentences[0]+" "+sentences[1], core.MaxSummaryLength)
	}
}

// Keywords returns up to the configured limit of keywords ranked by frequency,
// ties broken by first occurrence. When every token is filtered out the first
// raw tokens are returned instead, repeats included. Stored items dedup their
// keywords on write.
func (t *Tagger) Keywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return []string{}
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 || isStopword(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	if len(order) == 0 {
		return words[:min(t.keywordLimit, len(words))]
	}

	// stable insertion sort keeps first-occurrence order among equal counts
	ranked := make([]string, 0, len(order))
	for _, w := range order {
		i := len(ranked)
		for i > 0 && counts[ranked[i-1]] < counts[w] {
			i--
		}
		ranked = append(ranked, "")
		copy(ranked[i+1:], ranked[i:])
		ranked[i] = w
	}

	if len(ranked) > t.keywordLimit {
		ranked = ranked[:t.keywordLimit]
	}
	return ranked
}

// EmotionForScore maps a sentiment score to an emotion via the threshold ladder.
func EmotionForScore(score float64) core.Emotion {
	for _, step := range emotionLadder {
		if score >= step.threshold {
			return step.emotion
		}
	}
	return core.EmotionReflective
}

// splitSentences splits after '.', '!' or '?' when followed by whitespace.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
