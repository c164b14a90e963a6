package models

import (
	"fmt"
	"strings"
)

// Strictness controls how demanding the review bot is.
type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessBalanced Strictness = "balanced"
	StrictnessStrict   Strictness = "strict"
)

// ParseStrictness parses a strictness level from user input.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case StrictnessLenient:
		return StrictnessLenient, nil
	case StrictnessBalanced:
		return StrictnessBalanced, nil
	case StrictnessStrict:
		return StrictnessStrict, nil
	default:
		return "", fmt.Errorf("invalid strictness %q (expected lenient, balanced or strict)", s)
	}
}

// BotConfig configures the code-review bot before a simulation run.
type BotConfig struct {
	RepoName         string     `json:"repoName"`
	ReviewStrictness Strictness `json:"reviewStrictness"`
	FocusAreas       []string   `json:"focusAreas"`

	// SystemPromptOverride replaces the rendered instruction template
	// entirely when non-empty.
	SystemPromptOverride string `json:"systemPromptOverride,omitempty"`
}

// BugReport is a single bug finding in a review result.
type BugReport struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // high, medium, low
}

// SecurityFinding is a single security finding in a review result.
type SecurityFinding struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// CodeReviewResult is the structured outcome of a review simulation.
// Score is in [0, 100] where 100 is production-ready code.
type CodeReviewResult struct {
	Summary     string            `json:"summary"`
	Score       int               `json:"score"`
	Bugs        []BugReport       `json:"bugs"`
	Security    []SecurityFinding `json:"security"`
	Performance []string          `json:"performance"`
}
