package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"recruitflow/screening-api/internal/models"
	"recruitflow/screening-api/internal/utils"
)

// ScoredItem is one scored candidate as returned by a scoring backend. The
// response list is correlated back to the submitted documents strictly by
// DocumentID; neither completeness nor ordering is assumed.
type ScoredItem struct {
	DocumentID         string  `json:"document_id"`
	CandidateName      string  `json:"candidate_name"`
	Email              string  `json:"email"`
	MatchScore         float64 `json:"match_score"`
	CompatibilityScore float64 `json:"compatibility_score"`
	KeySkills          string  `json:"key_skills"`
	Feedback           string  `json:"feedback"`
}

// ScoringClient scores one batch of candidate documents against a role in a
// single remote call.
type ScoringClient interface {
	ScoreBatch(ctx context.Context, role models.Role, rubric string, docs []models.Document) ([]ScoredItem, error)
}

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

type geminiScorer struct {
	generator     textGenerator
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

// NewGeminiScorer builds a ScoringClient backed by the Gemini text API.
func NewGeminiScorer(generator textGenerator, logger *zap.Logger) ScoringClient {
	return &geminiScorer{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}
}

func (s *geminiScorer) ScoreBatch(ctx context.Context, role models.Role, rubric string, docs []models.Document) ([]ScoredItem, error) {
	prompt := s.promptBuilder.BuildBatchScoringPrompt(role, rubric, docs)

	s.logger.Debug("gemini batch scoring request",
		zap.String("role_id", role.ID.String()),
		zap.Int("documents", len(docs)),
		zap.Int("prompt_length", len(prompt)),
	)

	raw, err := s.generator.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to generate batch scores: %w", err)
	}

	s.logger.Debug("gemini batch scoring response",
		zap.String("role_id", role.ID.String()),
		zap.String("response_preview", utils.Truncate(raw, 200)),
	)

	items, err := parseScoredItems(raw)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func parseScoredItems(raw string) ([]ScoredItem, error) {
	jsonStr := extractJSON(raw)

	var items []ScoredItem
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, fmt.Errorf("failed to parse scoring response: %w", err)
	}

	return items, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// Prefer the array form; batch responses are JSON arrays
	if startArr != -1 && endArr != -1 && endArr > startArr && (startObj == -1 || startArr < startObj) {
		return text[startArr : endArr+1]
	} else if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}

// clampScore forces an adapter-reported value into [0, 100]. Backends are
// expected to respect the range already; this guards against model drift.
func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
