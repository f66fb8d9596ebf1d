package integration

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"ai-contract-review-be/pkg/analysis"
	"ai-contract-review-be/pkg/embedding"
	"ai-contract-review-be/pkg/llm"
	"ai-contract-review-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaBaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("OLLAMA_BASE_URL")
	if url == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	return url
}

func ollamaModel() string {
	if m := os.Getenv("OLLAMA_MODEL"); m != "" {
		return m
	}
	return "gemma:2b"
}

// TestOllamaChat verifies a basic round trip through the local model.
func TestOllamaChat(t *testing.T) {
	provider := ollama.NewOllamaProvider(ollamaBaseURL(t), ollamaModel())

	// First request can be slow while the model loads.
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	response, err := provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Reply with the single word: ready"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, response)
	t.Logf("Response: %s", response)
}

// TestOllamaChatStream verifies deltas arrive and concatenate to the full reply.
func TestOllamaChatStream(t *testing.T) {
	provider := ollama.NewOllamaProvider(ollamaBaseURL(t), ollamaModel())

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	var deltas []string
	full, err := provider.ChatStream(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Count from one to three in words."},
	}, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, deltas)
	assert.Equal(t, full, strings.Join(deltas, ""))
	t.Logf("Streamed %d deltas, %d bytes total", len(deltas), len(full))
}

// TestOllamaStructuredAssessment runs the extractor prompt against the local
// model and checks the response parses into the assessment schema. Small
// models drift on schema sometimes, so a parse failure skips rather than fails.
func TestOllamaStructuredAssessment(t *testing.T) {
	provider := ollama.NewOllamaProvider(ollamaBaseURL(t), ollamaModel())
	extractor := analysis.NewExtractor(provider)

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	result, err := extractor.Analyze(ctx, analysis.Input{
		TopChunksText: "The employee shall not work for any competitor for a period of 36 months after termination. " +
			"Salary is reviewed solely at the employer's discretion.",
		JobTitle:        "Software Engineer",
		YearsExperience: 5,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrMalformedOutput) {
			t.Skipf("Model produced unparseable output, acceptable for small local models: %v", err)
		}
		t.Fatalf("Analyze failed: %v", err)
	}

	assert.NotEmpty(t, result.Summary)
	assert.GreaterOrEqual(t, result.OverallScore, 0)
	assert.LessOrEqual(t, result.OverallScore, 100)
	t.Logf("Score: %d, flagged: %d", result.OverallScore, len(result.FlaggedClauses))
}

// TestOllamaEmbeddings verifies the embedding endpoint returns usable vectors.
func TestOllamaEmbeddings(t *testing.T) {
	model := os.Getenv("OLLAMA_EMBED_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}
	provider := embedding.NewOllamaProvider(ollamaBaseURL(t), model)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	vectors, err := provider.EmbedMany(ctx, []string{
		"termination clause with 30 days notice",
		"annual compensation and bonus structure",
	}, embedding.TaskDocument)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotEmpty(t, vectors[0])
	assert.Equal(t, len(vectors[0]), len(vectors[1]))

	query, err := provider.EmbedOne(ctx, "how much notice before termination", embedding.TaskQuery)
	require.NoError(t, err)
	assert.Equal(t, len(vectors[0]), len(query))
}
