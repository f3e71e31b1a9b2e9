package services

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"recruitflow/screening-api/internal/models"
	"recruitflow/screening-api/internal/utils"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

type openRouterScorer struct {
	client        *resty.Client
	apiKey        string
	model         string
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

// NewOpenRouterScorer builds a ScoringClient backed by an OpenRouter
// chat-completions endpoint.
func NewOpenRouterScorer(apiKey, model string, logger *zap.Logger) ScoringClient {
	return &openRouterScorer{
		client:        resty.New(),
		apiKey:        apiKey,
		model:         model,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}
}

func (s *openRouterScorer) ScoreBatch(ctx context.Context, role models.Role, rubric string, docs []models.Document) ([]ScoredItem, error) {
	prompt := s.promptBuilder.BuildBatchScoringPrompt(role, rubric, docs)

	s.logger.Debug("openrouter batch scoring request",
		zap.String("role_id", role.ID.String()),
		zap.Int("documents", len(docs)),
		zap.String("model", s.model),
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": "You are an AI recruiter scoring candidate CVs against a job description."},
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), utils.Truncate(resp.String(), 200))
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return nil, fmt.Errorf("no content in openrouter response")
	}

	return parseScoredItems(text)
}
