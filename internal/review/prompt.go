package review

import (
	"fmt"
	"strings"

	"smartbill/pkg/models"
)

// promptTemplate is the system prompt handed to the model. The bot
// configuration's repository name, strictness level and focus areas are
// interpolated verbatim, so rendering is fully deterministic.
const promptTemplate = `You are an expert GitHub Code Review Bot for the repository %s.
Strictness Level: %s.
Focus Areas: %s.
Analyze the provided diff for logic errors, security vulnerabilities, and performance bottlenecks.
Provide a score from 0 to 100 where 100 is production-ready code.`

// RenderPrompt builds the system prompt for a review run. When the
// configuration carries a SystemPromptOverride it replaces the template
// entirely; otherwise the template is filled from the configuration.
// Identical configurations always render identical prompts.
func RenderPrompt(cfg models.BotConfig) string {
	if cfg.SystemPromptOverride != "" {
		return cfg.SystemPromptOverride
	}

	return fmt.Sprintf(promptTemplate,
		cfg.RepoName,
		cfg.ReviewStrictness,
		strings.Join(cfg.FocusAreas, ", "))
}
