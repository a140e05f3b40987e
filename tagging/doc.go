// Package tagging implements the offline heuristic tagger.
//
// The tagger derives a core.Enrichment from raw text without any external service:
//
//   - Summary: the first one or two sentences, truncated
//   - Keywords: frequency-ranked tokens with stopwords removed
//   - Sentiment: a lexicon-based compound score in [-1, 1]
//   - Emotion: a threshold ladder over the sentiment score
//
// A Tagger holds only immutable configuration and is safe for concurrent use.
// Processing the same text twice always yields the same result.
//
// # Usage
//
//	tagger := tagging.New(tagging.WithKeywordLimit(5))
//	e := tagger.Process("Congress passed a new bill today. It affects healthcare.")
package tagging
