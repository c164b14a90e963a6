package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smartbill/internal/config"
	"smartbill/internal/logger"
	"smartbill/internal/review"
	"smartbill/pkg/models"
)

var reviewCmd = &cobra.Command{
	Use:   "review [diff-file]",
	Short: "Simulate an AI code-review bot over a PR diff",
	Long: `Run a code-review simulation over a unified diff.

The bot configuration (repository name, strictness level and focus areas)
is rendered into a fixed instruction prompt; the prompt and the diff are
sent to ChatGPT and the response is parsed into a structured result with
a 0-100 score, bug reports, security findings and performance notes.

Use --prompt-only to print the rendered prompt without calling the API,
or --prompt to replace the built-in instruction template entirely.

Required environment variables:
  OPENAI_API_KEY - OpenAI API key (not needed with --prompt-only)`,
	Example: `  # Review a diff with the default bot configuration
  smartbill review changes.diff

  # Review from stdin with a strict bot focused on security
  git diff | smartbill review - --repo my-org/api --strictness strict --focus Security

  # Inspect the prompt the bot would use
  smartbill review changes.diff --repo my-org/api --prompt-only

  # Save the structured result
  smartbill review changes.diff -o review.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	defaults := review.DefaultBotConfig()
	reviewCmd.Flags().String("repo", defaults.RepoName, "Repository name shown to the bot")
	reviewCmd.Flags().String("strictness", string(defaults.ReviewStrictness), "Review strictness: lenient, balanced or strict")
	reviewCmd.Flags().StringArray("focus", defaults.FocusAreas, "Focus area (repeatable)")
	reviewCmd.Flags().String("prompt", "", "Replace the built-in instruction template entirely")
	reviewCmd.Flags().Bool("prompt-only", false, "Print the rendered prompt and exit without calling the API")
	reviewCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	reviewCmd.Flags().Int("timeout", 120, "API timeout in seconds")
}

func runReview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("review")

	repo, _ := cmd.Flags().GetString("repo")
	strictnessFlag, _ := cmd.Flags().GetString("strictness")
	focusAreas, _ := cmd.Flags().GetStringArray("focus")
	promptOverride, _ := cmd.Flags().GetString("prompt")
	promptOnly, _ := cmd.Flags().GetBool("prompt-only")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	strictness, err := models.ParseStrictness(strictnessFlag)
	if err != nil {
		return err
	}

	botCfg := models.BotConfig{
		RepoName:             repo,
		ReviewStrictness:     strictness,
		FocusAreas:           focusAreas,
		SystemPromptOverride: promptOverride,
	}

	if promptOnly {
		fmt.Println(review.RenderPrompt(botCfg))
		return nil
	}

	diff, err := readDiff(args[0], log)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := review.NewService(review.ServiceConfig{
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		MaxRetries:  cfg.ExtractionRetries,
	})
	if err != nil {
		if errors.Is(err, review.ErrMissingAPIKey) {
			return fmt.Errorf("missing OpenAI API key. Please set OPENAI_API_KEY in your environment or .env file")
		}
		return fmt.Errorf("failed to create review service: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	log.Info().
		Str("repo", repo).
		Str("strictness", string(strictness)).
		Int("diff_bytes", len(diff)).
		Msg("Starting review simulation")

	startTime := time.Now()
	result, err := svc.Review(ctx, botCfg, diff)
	if err != nil {
		return handleReviewError(err, log)
	}

	log.Info().
		Int("score", result.Score).
		Int("bugs", len(result.Bugs)).
		Int("security", len(result.Security)).
		Dur("duration", time.Since(startTime)).
		Msg("Review simulation completed")

	return outputJSON(result, outputPath, log)
}

// readDiff reads the diff from a file, or from stdin when the path is "-".
func readDiff(path string, log zerolog.Logger) (string, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read diff from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Error().Str("file", path).Msg("Diff file not found")
				return "", fmt.Errorf("diff file not found: %s", path)
			}
			return "", fmt.Errorf("failed to read diff file: %w", err)
		}
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("diff is empty: %s", path)
	}

	return string(data), nil
}

// handleReviewError provides user-friendly messages for simulation failures.
func handleReviewError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Review simulation failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("review simulation timed out. Try increasing --timeout or reviewing a smaller diff")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("review simulation was canceled")
	case errors.Is(err, review.ErrEmptyDiff):
		return fmt.Errorf("the diff is empty, nothing to review")
	case errors.Is(err, review.ErrSimulationFailed):
		return fmt.Errorf("review simulation failed. This may be due to network issues or an unusable model response: %w", err)
	default:
		return fmt.Errorf("review simulation failed: %w", err)
	}
}
