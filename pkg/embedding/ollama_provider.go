package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

var _ Provider = &OllamaProvider{}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *OllamaProvider) EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error) {
	// Ollama has no task-type concept; nomic models expect a prefix instead.
	prompt := text
	switch taskType {
	case TaskQuery:
		prompt = "search_query: " + text
	case TaskDocument:
		prompt = "search_document: " + text
	}

	reqPayload := ollamaEmbedRequest{
		Model:  p.ModelName,
		Prompt: prompt,
	}
	payloadJson, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, err
	}

	url := p.BaseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrEmbeddingService, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body %s", ErrEmbeddingService, res.StatusCode, string(resBytes))
	}

	var embRes ollamaEmbedResponse
	if err := json.Unmarshal(resBytes, &embRes); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrEmbeddingService, err)
	}
	if len(embRes.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrEmbeddingService)
	}

	return embRes.Embedding, nil
}

// EmbedMany issues one request per text. Ollama's embeddings endpoint is
// single-input, so the batch is sequential; output order matches input order.
func (p *OllamaProvider) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.EmbedOne(ctx, text, taskType)
		if err != nil {
			return nil, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
