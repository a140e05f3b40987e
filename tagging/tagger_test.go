package tagging

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/memlane/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_CongressScenario(t *testing.T) {
	tagger := New()
	text := "Congress passed a new bill today. It affects healthcare."

	e := tagger.Process(text)

	assert.Equal(t, text, e.Summary)
	assert.Equal(t, []string{"congress", "passed", "new", "bill", "today", "affects", "healthcare"}, e.Keywords)
	assert.Equal(t, 0.0, e.SentimentScore)
	assert.Equal(t, core.EmotionNeutral, e.Emotion)
}

func TestProcess_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		e := New().Process(text)
		assert.Empty(t, e.Summary)
		assert.NotNil(t, e.Keywords)
		assert.Empty(t, e.Keywords)
		assert.Equal(t, 0.0, e.SentimentScore)
		assert.Equal(t, core.EmotionNeutral, e.Emotion)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	tagger := New()
	text := "The launch went really well! Everyone was thrilled. We celebrated late into the night."

	first := tagger.Process(text)
	second := tagger.Process(text)

	assert.True(t, first.Equal(second))
}

func TestProcess_Bounds(t *testing.T) {
	inputs := []string{
		"",
		"a",
		strings.Repeat("love great awesome best ", 200) + "!!!!!!!!",
		strings.Repeat("hate worst terrible disaster ", 200) + "!!!!!!!!",
		strings.Repeat("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda ", 20),
		"不错 非常好。 これはテストです! Ça marche très bien.",
	}

	for _, limit := range []int{1, 3, core.DefaultKeywordLimit} {
		tagger := New(WithKeywordLimit(limit))
		for _, text := range inputs {
			e := tagger.Process(text)
			assert.GreaterOrEqual(t, e.SentimentScore, -1.0)
			assert.LessOrEqual(t, e.SentimentScore, 1.0)
			assert.LessOrEqual(t, len(e.Keywords), limit)
			assert.LessOrEqual(t, utf8.RuneCountInString(e.Summary), core.MaxSummaryLength)
			require.NoError(t, core.ValidateEnrichment(e, limit))
		}
	}
}

func TestWithKeywordLimit_IgnoresOutOfRange(t *testing.T) {
	assert.Equal(t, core.DefaultKeywordLimit, New(WithKeywordLimit(0)).KeywordLimit())
	assert.Equal(t, core.DefaultKeywordLimit, New(WithKeywordLimit(50)).KeywordLimit())
	assert.Equal(t, 4, New(WithKeywordLimit(4)).KeywordLimit())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single sentence", "Just one sentence here.", "Just one sentence here."},
		{"two of three sentences", "First one. Second one! Third one?", "First one. Second one!"},
		{"punctuation without whitespace does not split", "Version 1.2.3 shipped.", "Version 1.2.3 shipped."},
		{"newline counts as whitespace", "Line one.\nLine two.", "Line one. Line two."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.text))
		})
	}
}

func TestSummarize_Truncation(t *testing.T) {
	long := strings.Repeat("é", 500)
	assert.Equal(t, 280, utf8.RuneCountInString(Summarize(long)))

	twoLong := strings.Repeat("a", 300) + ". " + strings.Repeat("b", 300) + "."
	assert.Equal(t, core.MaxSummaryLength, utf8.RuneCountInString(Summarize(twoLong)))
}

func TestKeywords(t *testing.T) {
	tagger := New(WithKeywordLimit(3))

	t.Run("frequency then first occurrence", func(t *testing.T) {
		got := tagger.Keywords("zebra apple mango apple mango apple")
		assert.Equal(t, []string{"apple", "mango", "zebra"}, got)
	})

	t.Run("stopwords and short tokens dropped", func(t *testing.T) {
		got := tagger.Keywords("The cat and the dog would be there with fish")
		assert.Equal(t, []string{"cat", "dog", "fish"}, got)
	})

	t.Run("internal hyphen and apostrophe kept", func(t *testing.T) {
		got := New().Keywords("state-of-the-art designer's toolkit")
		assert.Equal(t, []string{"state-of-the-art", "designer's", "toolkit"}, got)
	})

	t.Run("fallback to raw tokens when everything is filtered", func(t *testing.T) {
		got := tagger.Keywords("it is as it is")
		assert.Equal(t, []string{"it", "is", "as", "it", "is"}, got)
	})

	t.Run("raw fallback is cut at the limit", func(t *testing.T) {
		got := New(WithKeywordLimit(3)).Keywords("is is is is is")
		assert.Equal(t, []string{"is", "is", "is"}, got)
	})
}

func TestSentiment(t *testing.T) {
	assert.Equal(t, 0.0, Sentiment("The meeting is on Tuesday."))
	assert.Greater(t, Sentiment("I love this, it is great!"), 0.5)
	assert.Less(t, Sentiment("This is a terrible disaster."), -0.5)
	assert.Less(t, Sentiment("This is not good."), 0.0)
	assert.Greater(t, Sentiment("This is very good."), Sentiment("This is good."))
	assert.Greater(t, Sentiment("This is good!!!"), Sentiment("This is good."))
}

func TestEmotionForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  core.Emotion
	}{
		{1.0, core.EmotionExcited},
		{0.6, core.EmotionExcited},
		{0.59, core.EmotionHappy},
		{0.2, core.EmotionHappy},
		{0.0, core.EmotionNeutral},
		{-0.1, core.EmotionNeutral},
		{-0.2, core.EmotionThoughtful},
		{-0.3, core.EmotionThoughtful},
		{-0.31, core.EmotionReflective},
		{-1.0, core.EmotionReflective},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EmotionForScore(tt.score), "score %v", tt.score)
	}
}
