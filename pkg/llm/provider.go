package llm

import (
	"context"
	"errors"
)

// ErrModelService marks transport/quota failures from the generative model
// backend, as opposed to responses that arrived but could not be used.
var ErrModelService = errors.New("model service error")

// Standard roles in a provider-agnostic chat history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	JSONOnly    bool   // Ask the backend for structured-output mode where supported
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithJSONOnly() Option {
	return func(o *Options) {
		o.JSONOnly = true
	}
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the full response.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and forwards response fragments to
	// onDelta in emission order. It returns the full concatenated text once
	// the stream has drained. If onDelta returns an error the stream is
	// abandoned and that error is returned; a transport failure before or
	// during emission wraps ErrModelService.
	ChatStream(ctx context.Context, history []Message, onDelta func(fragment string) error, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
