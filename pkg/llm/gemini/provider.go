package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-contract-review-be/pkg/llm"
)

type GeminiProvider struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// mapContents converts provider-agnostic history into Gemini contents.
// Gemini's v1 API has no system role; system messages are folded into the
// user turn stream so the instruction still leads the conversation.
func mapContents(history []llm.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Parts: []geminiPart{{Text: msg.Content}},
			Role:  role,
		})
	}
	return contents
}

func buildRequest(history []llm.Message, options *llm.Options) geminiRequest {
	req := geminiRequest{Contents: mapContents(history)}

	cfg := &geminiGenerationConfig{}
	if options.Temperature > 0 {
		cfg.Temperature = options.Temperature
	}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = options.MaxTokens
	}
	if options.JSONOnly {
		cfg.ResponseMimeType = "application/json"
	}
	if *cfg != (geminiGenerationConfig{}) {
		req.GenerationConfig = cfg
	}

	return req
}

func (p *GeminiProvider) resolveOptions(opts []llm.Option) (*llm.Options, string) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}
	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}
	return options, model
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options, model := p.resolveOptions(opts)

	payload := buildRequest(history, options)
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:generateContent",
		model,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrModelService, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", llm.ErrModelService, err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d, body %s", llm.ErrModelService, res.StatusCode, string(resBody))
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", llm.ErrModelService, err)
	}
	if len(geminiRes.Candidates) == 0 || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", llm.ErrModelService)
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

func (p *GeminiProvider) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string) error, opts ...llm.Option) (string, error) {
	options, model := p.resolveOptions(opts)

	payload := buildRequest(history, options)
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:streamGenerateContent?alt=sse",
		model,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrModelService, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		resBody, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("%w: status %d, body %s", llm.ErrModelService, res.StatusCode, string(resBody))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("%w: unmarshal stream chunk: %v", llm.ErrModelService, err)
		}
		if len(chunk.Candidates) == 0 || len(chunk.Candidates[0].Content.Parts) == 0 {
			continue
		}

		fragment := chunk.Candidates[0].Content.Parts[0].Text
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if onDelta != nil {
			if err := onDelta(fragment); err != nil {
				return "", err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: stream interrupted: %v", llm.ErrModelService, err)
	}

	return full.String(), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
