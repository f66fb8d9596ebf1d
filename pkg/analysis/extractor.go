package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ai-contract-review-be/pkg/llm"
)

// Input is the context fed to one extraction request.
type Input struct {
	TopChunksText   string // top-ranked chunks joined with blank lines
	JobTitle        string
	YearsExperience int
}

// Extractor turns top-ranked contract excerpts into a structured Result via
// a single request/response cycle against the generative model. No retries
// and no self-correction pass: cost and latency stay bounded and behavior
// stays auditable.
type Extractor struct {
	llmProvider llm.Provider
}

func NewExtractor(llmProvider llm.Provider) *Extractor {
	return &Extractor{llmProvider: llmProvider}
}

// Analyze issues the structured request and validates the response field by
// field. Transport failures wrap llm.ErrModelService; everything that arrived
// but does not satisfy the schema wraps ErrMalformedOutput.
func (e *Extractor) Analyze(ctx context.Context, input Input) (*Result, error) {
	history := []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: buildExtractionPrompt(input)},
	}

	raw, err := e.llmProvider.Chat(ctx, history,
		llm.WithJSONOnly(),
		llm.WithTemperature(0.2),
	)
	if err != nil {
		return nil, err
	}

	return ParseResult(raw)
}

// rawResult mirrors the wire schema with lenient types so every constraint
// can be checked explicitly instead of trusted via struct decoding.
type rawResult struct {
	Summary             *string              `json:"summary"`
	OverallScore        *json.Number         `json:"overall_score"`
	FlaggedClauses      []rawFlaggedClause   `json:"flagged_clauses"`
	NegotiationMessages []NegotiationMessage `json:"negotiation_messages"`
}

type rawFlaggedClause struct {
	Clause   string `json:"clause"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}

// ParseResult validates a model response against the analysis schema.
func ParseResult(response string) (*Result, error) {
	cleaned := stripCodeFence(response)

	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.UseNumber()

	var raw rawResult
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if raw.Summary == nil {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformedOutput)
	}
	if raw.OverallScore == nil {
		return nil, fmt.Errorf("%w: missing overall_score", ErrMalformedOutput)
	}

	score, err := raw.OverallScore.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: overall_score is not an integer: %s", ErrMalformedOutput, raw.OverallScore.String())
	}
	// Out-of-range scores are rejected, not clamped: silent clamping would
	// mask a prompt or model regression.
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: overall_score %d outside [0,100]", ErrMalformedOutput, score)
	}

	result := &Result{
		Summary:             *raw.Summary,
		OverallScore:        int(score),
		FlaggedClauses:      make([]FlaggedClause, 0, len(raw.FlaggedClauses)),
		NegotiationMessages: make([]NegotiationMessage, 0, len(raw.NegotiationMessages)),
	}

	for i, fc := range raw.FlaggedClauses {
		severity, ok := normalizeSeverity(fc.Severity)
		if !ok {
			return nil, fmt.Errorf("%w: flagged_clauses[%d] has unknown severity %q", ErrMalformedOutput, i, fc.Severity)
		}
		result.FlaggedClauses = append(result.FlaggedClauses, FlaggedClause{
			Clause:   fc.Clause,
			Issue:    fc.Issue,
			Severity: severity,
		})
	}

	result.NegotiationMessages = append(result.NegotiationMessages, raw.NegotiationMessages...)

	return result, nil
}

// stripCodeFence removes a markdown ```json wrapper some models add even in
// structured-output mode.
func stripCodeFence(response string) []byte {
	b := bytes.TrimSpace([]byte(response))
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}
