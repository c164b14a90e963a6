// Package review simulates an AI code-review bot for pull-request diffs.
//
// A run renders a deterministic system prompt from the bot configuration,
// sends it together with the diff to ChatGPT, and parses the JSON response
// into a structured CodeReviewResult. Runs are stateless: a failed run
// returns an error and leaves nothing behind.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"smartbill/internal/logger"
	"smartbill/pkg/models"
)

// ServiceConfig holds configuration for the review service.
type ServiceConfig struct {
	// Model is the ChatGPT model used for review runs.
	Model string

	// Temperature controls response randomness (0.0 to 2.0).
	Temperature float32

	// MaxRetries is the number of attempts for the ChatGPT call.
	MaxRetries int
}

// DefaultServiceConfig returns a ServiceConfig with sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Model:       openai.GPT4oMini,
		Temperature: 0.1,
		MaxRetries:  2,
	}
}

// DefaultBotConfig returns the bot configuration used when the caller
// does not override repository, strictness or focus areas.
func DefaultBotConfig() models.BotConfig {
	return models.BotConfig{
		RepoName:         "my-org/awesome-project",
		ReviewStrictness: models.StrictnessBalanced,
		FocusAreas:       []string{"Security", "Maintainability"},
	}
}

// Service runs code-review simulations against ChatGPT.
type Service struct {
	client *openai.Client
	config ServiceConfig
	log    zerolog.Logger
}

// NewService creates a review service using the OPENAI_API_KEY
// environment variable.
func NewService(config ServiceConfig) (*Service, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return NewServiceWithClient(openai.NewClient(apiKey), config), nil
}

// NewServiceWithClient creates a review service with an explicit client.
// Useful for testing.
func NewServiceWithClient(client *openai.Client, config ServiceConfig) *Service {
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}

	return &Service{
		client: client,
		config: config,
		log:    logger.WithComponent("review"),
	}
}

// Review runs a single review simulation over the given diff text.
// An empty or whitespace-only diff is rejected without calling the model.
func (s *Service) Review(ctx context.Context, cfg models.BotConfig, diff string) (*models.CodeReviewResult, error) {
	const op = "Review"

	if strings.TrimSpace(diff) == "" {
		return nil, &SimulationError{Op: op, Err: ErrEmptyDiff}
	}

	prompt := RenderPrompt(cfg)
	content := fmt.Sprintf("System Prompt: %s\n\nPR Diff:\n%s", prompt, diff)

	s.log.Debug().
		Str("repo", cfg.RepoName).
		Str("strictness", string(cfg.ReviewStrictness)).
		Int("diff_bytes", len(diff)).
		Msg("Starting code review simulation")

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.config.Model,
			Temperature: s.config.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: reviewSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: content,
				},
			},
		})
		if err != nil {
			lastErr = err
			s.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("ChatGPT review call failed")
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("%s: no response choices returned", op)
			continue
		}

		result, err := ParseReviewResponse(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			s.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("Failed to parse review response")
			continue
		}

		s.log.Info().
			Str("repo", cfg.RepoName).
			Int("score", result.Score).
			Int("bugs", len(result.Bugs)).
			Msg("Code review simulation completed")
		return result, nil
	}

	return nil, WrapSimulationError(op, ErrSimulationFailed, fmt.Sprintf("after %d attempts: %v", s.config.MaxRetries, lastErr))
}

// reviewSystemPrompt instructs the model to return the review as bare JSON.
const reviewSystemPrompt = `You are a code review engine. Respond with ONLY a JSON object, no explanations or markdown formatting:
{
  "summary": "one-paragraph assessment of the diff",
  "score": 0,
  "bugs": [{"file": "path", "line": 0, "message": "what is wrong", "severity": "high|medium|low"}],
  "security": [{"issue": "finding", "suggestion": "remediation"}],
  "performance": ["observation"]
}
The score is an integer from 0 to 100 where 100 is production-ready code.`

// ParseReviewResponse parses a ChatGPT response into a CodeReviewResult.
// The score is clamped into [0, 100] and bug severities are normalized
// to high, medium or low, with unknown values treated as medium.
func ParseReviewResponse(response string) (*models.CodeReviewResult, error) {
	const op = "ParseReviewResponse"

	cleaned := stripMarkdownFences(response)
	if cleaned == "" {
		return nil, fmt.Errorf("%s: empty response content", op)
	}

	var result models.CodeReviewResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%s: failed to parse JSON response: %w", op, err)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}

	for i := range result.Bugs {
		result.Bugs[i].Severity = normalizeSeverity(result.Bugs[i].Severity)
	}

	if result.Bugs == nil {
		result.Bugs = []models.BugReport{}
	}
	if result.Security == nil {
		result.Security = []models.SecurityFinding{}
	}
	if result.Performance == nil {
		result.Performance = []string{}
	}

	return &result, nil
}

func normalizeSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "high", "critical":
		return "high"
	case "low", "info":
		return "low"
	default:
		return "medium"
	}
}

// stripMarkdownFences removes markdown code fences that models sometimes
// wrap around JSON responses.
func stripMarkdownFences(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	return strings.TrimSpace(cleaned)
}
