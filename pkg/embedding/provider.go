package embedding

import (
	"context"
	"errors"
)

// ErrEmbeddingService marks transport/quota/malformed-response failures from
// the embedding backend. The pipeline does not retry these internally.
var ErrEmbeddingService = errors.New("embedding service error")

// Task types hint the provider about the retrieval role of the text.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider defines the interface for generating text embeddings.
type Provider interface {
	// EmbedOne maps a single text to a dense vector.
	EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error)

	// EmbedMany maps texts to vectors, preserving input order and length.
	EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}
