package analysis

import "fmt"

// SystemPrompt frames the model as an employment-contract advisor. The chat
// composer reuses it so conversational answers keep the same persona as the
// structured assessment.
const SystemPrompt = `You are an expert employment law advisor. You specialize in reviewing job contracts under statutory labor standards, including working hours and rest rules, annual leave entitlements, advance notice for dismissal and resignation, equal pay requirements, and general employment contract norms.

When analyzing a contract:
1. Identify clauses that deviate from legal standards or employee rights
2. Flag clauses that are unusual, unfair, or potentially unenforceable
3. Highlight areas where the employee could negotiate better terms
4. Provide a realistic overall quality score (1-100) for the contract
5. Write professional, assertive negotiation messages in the first person that the employee can send to their employer

Consider the employee's years of experience and job title when evaluating whether the offered terms are appropriate for their seniority level.

Always respond in the same language the user is writing in. Be clear, practical, and supportive. Your goal is to empower the employee.`

// buildExtractionPrompt is the single user turn of the structured request.
// The model is told to return only the JSON object; the provider additionally
// enables structured-output mode where the backend supports it.
func buildExtractionPrompt(input Input) string {
	return fmt.Sprintf(`You need to analyze the following contract excerpts.
Return ONLY a JSON object with this exact structure:
{
  "summary": "A brief overall summary of the contract.",
  "overall_score": 85,
  "flagged_clauses": [
    { "clause": "Clause text", "issue": "Why it's an issue", "severity": "low/medium/high" }
  ],
  "negotiation_messages": [
    { "clause": "Clause text", "message": "The message I should send" }
  ]
}

Job Title: %s
Years of Experience: %d

Contract Context:
%s`, input.JobTitle, input.YearsExperience, input.TopChunksText)
}
