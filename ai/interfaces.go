package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces a short generative summary of captured text.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize returns a summary of text. titleHint, when non-empty, is the
	// capture's title and may be used as extra context.
	// Returns an error if the model could not be reached or returned nothing.
	Summarize(ctx context.Context, text, titleHint string) (string, error)
}

// Tagger asks a model for three topical tags and one emotion label.
// Implementations must be thread-safe for concurrent use.
type Tagger interface {
	// Tag returns the model's raw response. Interpreting the response is the
	// caller's job, so a malformed answer is not an error here.
	// Returns an error only when the model could not be reached.
	Tag(ctx context.Context, text string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the Embedder, Summarizer and Tagger instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Summarizer returns the generative summary service.
	Summarizer() Summarizer

	// Tagger returns the tag and emotion service.
	Tagger() Tagger

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
