package factory

import (
	"fmt"

	"ai-contract-review-be/pkg/llm"
	"ai-contract-review-be/pkg/llm/gemini"
	"ai-contract-review-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, geminiApiKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "gemini":
		if geminiApiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiApiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
