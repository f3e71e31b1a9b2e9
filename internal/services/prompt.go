package services

import (
	"fmt"
	"strings"

	"recruitflow/screening-api/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildBatchScoringPrompt creates the prompt that scores every candidate in a
// batch against one role in a single call. Each CV block is tagged with its
// document id so the response can be correlated back.
func (pb *PromptBuilder) BuildBatchScoringPrompt(role models.Role, rubric string, docs []models.Document) string {
	var cvSection strings.Builder
	for _, doc := range docs {
		cvSection.WriteString(fmt.Sprintf("--- CANDIDATE (document_id: %s, file: %s) ---\n%s\n\n",
			doc.ID.String(), doc.OriginalFileName, doc.ExtractedText))
	}

	if strings.TrimSpace(rubric) == "" {
		rubric = "No additional rubric provided. Use the job description alone."
	}

	return fmt.Sprintf(`You are an expert HR recruiter screening candidates for a %s position.

JOB DESCRIPTION:
%s

SCORING RUBRIC AND CONTEXT:
%s

CANDIDATE CVS:
%s

Evaluate EVERY candidate above against the job description. For each candidate return:
- candidate_name: the full name extracted from the CV
- email: the email address extracted from the CV, or "" if none is present
- match_score: 0-100, how well the candidate matches the role requirements
- compatibility_score: 0-100, overall compatibility (experience level, trajectory, culture)
- key_skills: a short comma-separated list of the candidate's most relevant skills
- feedback: 2-4 sentences explaining strengths and gaps for this role

Return ONLY a JSON array, one object per candidate, in this exact format:
[
  {
    "document_id": "<the document_id the CV was tagged with>",
    "candidate_name": "<extracted name>",
    "email": "<extracted email or empty string>",
    "match_score": <0-100>,
    "compatibility_score": <0-100>,
    "key_skills": "<comma-separated skills>",
    "feedback": "<2-4 sentences>"
  }
]

Be objective and thorough. Every candidate must appear exactly once, keyed by its document_id.`,
		role.Title, role.Content, rubric, cvSection.String())
}

// BuildRetrievalQuery creates the query used to pull rubric context for a role.
func (pb *PromptBuilder) BuildRetrievalQuery(roleTitle string) string {
	return fmt.Sprintf("Screening criteria, scoring guidelines and requirements for %s", roleTitle)
}

// FormatKnowledgeContext renders retrieved knowledge-base chunks for prompt use.
func FormatKnowledgeContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
