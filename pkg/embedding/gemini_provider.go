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

type GeminiProvider struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

func NewGeminiProvider(apiKey string, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

var _ Provider = &GeminiProvider{}

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

type geminiBatchEmbedRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiEmbeddingValues struct {
	Values []float32 `json:"values"`
}

type geminiEmbedResponse struct {
	Embedding geminiEmbeddingValues `json:"embedding"`
}

type geminiBatchEmbedResponse struct {
	Embeddings []geminiEmbeddingValues `json:"embeddings"`
}

func (p *GeminiProvider) EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error) {
	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
		p.ModelName,
	)

	reqBody := geminiEmbedRequest{
		Model:    p.ModelName,
		Content:  geminiContent{Parts: []geminiContentPart{{Text: text}}},
		TaskType: taskType,
	}

	resBytes, err := p.post(ctx, endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	var res geminiEmbedResponse
	if err := json.Unmarshal(resBytes, &res); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrEmbeddingService, err)
	}
	if len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrEmbeddingService)
	}

	return res.Embedding.Values, nil
}

func (p *GeminiProvider) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:batchEmbedContents",
		p.ModelName,
	)

	batch := geminiBatchEmbedRequest{
		Requests: make([]geminiEmbedRequest, len(texts)),
	}
	for i, text := range texts {
		batch.Requests[i] = geminiEmbedRequest{
			Model:    "models/" + p.ModelName,
			Content:  geminiContent{Parts: []geminiContentPart{{Text: text}}},
			TaskType: taskType,
		}
	}

	resBytes, err := p.post(ctx, endpoint, batch)
	if err != nil {
		return nil, err
	}

	var res geminiBatchEmbedResponse
	if err := json.Unmarshal(resBytes, &res); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrEmbeddingService, err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbeddingService, len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", ErrEmbeddingService, i)
		}
		vectors[i] = e.Values
	}

	return vectors, nil
}

func (p *GeminiProvider) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
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

	return resBytes, nil
}
