package review

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"smartbill/pkg/models"
)

func TestReviewRejectsEmptyDiff(t *testing.T) {
	svc := NewServiceWithClient(openai.NewClient("test-key"), DefaultServiceConfig())

	for _, diff := range []string{"", "   ", "\n\t\n"} {
		_, err := svc.Review(context.Background(), DefaultBotConfig(), diff)
		if !errors.Is(err, ErrEmptyDiff) {
			t.Errorf("Review(%q) error = %v, want ErrEmptyDiff", diff, err)
		}
	}
}

func TestParseReviewResponse(t *testing.T) {
	response := "```json\n" + `{
		"summary": "Looks mostly fine.",
		"score": 82,
		"bugs": [
			{"file": "auth.go", "line": 42, "message": "token not validated", "severity": "HIGH"},
			{"file": "db.go", "line": 7, "message": "missing rollback", "severity": "unknown"}
		],
		"security": [
			{"issue": "SQL built by concatenation", "suggestion": "use parameterized queries"}
		],
		"performance": ["N+1 query in list handler"]
	}` + "\n```"

	result, err := ParseReviewResponse(response)
	if err != nil {
		t.Fatalf("ParseReviewResponse() error = %v", err)
	}

	if result.Summary != "Looks mostly fine." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.Score != 82 {
		t.Errorf("Score = %d, want 82", result.Score)
	}
	if len(result.Bugs) != 2 {
		t.Fatalf("len(Bugs) = %d, want 2", len(result.Bugs))
	}
	if result.Bugs[0].Severity != "high" {
		t.Errorf("Bugs[0].Severity = %q, want high", result.Bugs[0].Severity)
	}
	if result.Bugs[1].Severity != "medium" {
		t.Errorf("Bugs[1].Severity = %q, want medium for unknown input", result.Bugs[1].Severity)
	}
	if len(result.Security) != 1 || result.Security[0].Suggestion != "use parameterized queries" {
		t.Errorf("Security = %+v", result.Security)
	}
	if len(result.Performance) != 1 {
		t.Errorf("Performance = %+v", result.Performance)
	}
}

func TestParseReviewResponseClampsScore(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
	}{
		{"above range", `{"summary": "s", "score": 250}`, 100},
		{"below range", `{"summary": "s", "score": -5}`, 0},
		{"in range", `{"summary": "s", "score": 55}`, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseReviewResponse(tt.response)
			if err != nil {
				t.Fatalf("ParseReviewResponse() error = %v", err)
			}
			if result.Score != tt.want {
				t.Errorf("Score = %d, want %d", result.Score, tt.want)
			}
		})
	}
}

func TestParseReviewResponseDefaultsCollections(t *testing.T) {
	result, err := ParseReviewResponse(`{"summary": "clean diff", "score": 97}`)
	if err != nil {
		t.Fatalf("ParseReviewResponse() error = %v", err)
	}

	if result.Bugs == nil || result.Security == nil || result.Performance == nil {
		t.Errorf("collections not defaulted: %+v", result)
	}
	if len(result.Bugs)+len(result.Security)+len(result.Performance) != 0 {
		t.Errorf("expected empty collections, got %+v", result)
	}
}

func TestParseReviewResponseRejectsGarbage(t *testing.T) {
	for _, response := range []string{"", "not json at all", "```\n\n```"} {
		if _, err := ParseReviewResponse(response); err == nil {
			t.Errorf("ParseReviewResponse(%q) succeeded, want error", response)
		}
	}
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"high", "high"},
		{"Critical", "high"},
		{"LOW", "low"},
		{"info", "low"},
		{"medium", "medium"},
		{"whatever", "medium"},
		{"", "medium"},
	}

	for _, tt := range tests {
		if got := normalizeSeverity(tt.input); got != tt.want {
			t.Errorf("normalizeSeverity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := WrapSimulationError("Review", ErrSimulationFailed, "after 2 attempts")

	if !errors.Is(err, ErrSimulationFailed) {
		t.Errorf("errors.Is(err, ErrSimulationFailed) = false")
	}

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("errors.As failed for %T", err)
	}
	if simErr.Op != "Review" {
		t.Errorf("Op = %q, want Review", simErr.Op)
	}
}

func TestDefaultBotConfig(t *testing.T) {
	cfg := DefaultBotConfig()

	if cfg.RepoName != "my-org/awesome-project" {
		t.Errorf("RepoName = %q", cfg.RepoName)
	}
	if cfg.ReviewStrictness != models.StrictnessBalanced {
		t.Errorf("ReviewStrictness = %q", cfg.ReviewStrictness)
	}
	if len(cfg.FocusAreas) != 2 {
		t.Errorf("FocusAreas = %v", cfg.FocusAreas)
	}
}
