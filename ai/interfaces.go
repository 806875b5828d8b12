package ai

import "context"

// LanguageModel is an opaque text-in/text-out completion service.
// Implementations must be thread-safe for concurrent use.
type LanguageModel interface {
	// Complete sends a system instruction and user content to the model and
	// returns its raw text output. No structured output is guaranteed.
	Complete(ctx context.Context, systemInstruction, userContent string) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single query string.
	// Implementations may cache results keyed on the text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages LanguageModel and Embedder instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// LanguageModel returns the chat completion service used for routing and generation.
	// The returned LanguageModel is safe for concurrent use.
	LanguageModel() LanguageModel

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
