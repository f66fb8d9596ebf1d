package rag

import (
	"encoding/json"
	"fmt"

	"ai-contract-review-be/pkg/analysis"
	"ai-contract-review-be/pkg/llm"
)

// ComposeSystemContext builds the grounding context for follow-up chat.
// It is a pure function: the analysis summary, score and flagged clauses are
// embedded verbatim into the fixed advisor instructions so the model's
// free-form answers stay tied to this specific contract rather than general
// legal knowledge.
func ComposeSystemContext(result *analysis.Result, jobTitle string, yearsExperience int) string {
	clauses := result.FlaggedClauses
	if clauses == nil {
		// A nil slice marshals to the literal null; the model should see an
		// empty list instead.
		clauses = []analysis.FlaggedClause{}
	}
	flagged, err := json.Marshal(clauses)
	if err != nil {
		flagged = []byte("[]")
	}

	contractContext := fmt.Sprintf(`Job Title: %s
Years of Experience: %d
Analysis Score: %d/100
Analysis Summary: %s
Flagged Clauses: %s`,
		jobTitle,
		yearsExperience,
		result.OverallScore,
		result.Summary,
		string(flagged),
	)

	return fmt.Sprintf("%s\n\nHere is the context of the user's contract analysis:\n%s",
		analysis.SystemPrompt, contractContext)
}

// BuildChatHistory prepends the grounded system context to prior turns and
// the new user message, producing the full history for one chat completion.
func BuildChatHistory(systemContext string, priorTurns []llm.Message, newUserMessage string) []llm.Message {
	history := make([]llm.Message, 0, len(priorTurns)+2)
	history = append(history, llm.Message{Role: llm.RoleSystem, Content: systemContext})
	history = append(history, priorTurns...)
	history = append(history, llm.Message{Role: llm.RoleUser, Content: newUserMessage})
	return history
}
