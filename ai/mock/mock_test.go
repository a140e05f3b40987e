package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_DeterministicUnitVectors(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "congress")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "congress")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)

	_, err = m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, 1, m.BatchCallCount())

	m.Reset()
	assert.Zero(t, m.CallCount())
}

func TestMockTagger_DefaultAnswer(t *testing.T) {
	m := NewMockTagger()

	answer, err := m.Tag(context.Background(), "Go, badger!")
	require.NoError(t, err)
	assert.Equal(t, `["go","badger","misc","neutral"]`, answer)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockProvider_Accessors(t *testing.T) {
	p := NewMockProvider().(*MockProvider)

	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.Same(t, p.GetMockSummarizer(), p.Summarizer())
	assert.Same(t, p.GetMockTagger(), p.Tagger())
	assert.NoError(t, p.Close())
}
