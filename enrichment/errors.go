package enrichment

import "errors"

var (
	// ErrMalformedTagResponse indicates a tag answer that violates the response contract.
	ErrMalformedTagResponse = errors.New("malformed tag response")

	// ErrEmptySummary indicates the summarizer answered with no text.
	ErrEmptySummary = errors.New("empty summary")

	// ErrSummarizerRequired is returned when an Adapter is built without a summarizer.
	ErrSummarizerRequired = errors.New("summarizer required")

	// ErrTaggerRequired is returned when an Adapter is built without a tagger.
	ErrTaggerRequired = errors.New("tagger required")
)
