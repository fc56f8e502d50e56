package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a quiz and print it as JSON",
	Long: `Generate a five-question quiz for a topic and print it as JSON.

Failures are printed as {"error": "..."} with a non-zero exit status.
With --attempts N, upstream failures (network, timeout, rate limit) are
resubmitted up to N times in total with exponential backoff.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attempts, _ := cmd.Flags().GetInt("attempts")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		settings, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		gen, _, err := newGenerator(ctx, settings.LLM, st.EventRepo())
		if err != nil {
			return err
		}

		return runGenerate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), gen, strings.Join(args, " "), attempts)
	},
}

// runGenerate writes {"quiz": ...} on success. On failure it writes
// {"error": ...} with the caller-safe message and returns the classified error.
func runGenerate(ctx context.Context, stdout, stderr io.Writer, gen quizgen.Generator, topic string, attempts int) error {
	rcfg := quizgen.DefaultResubmitConfig()
	rcfg.MaxAttempts = attempts
	r := quizgen.WithResubmit(gen, rcfg)
	r.OnRetry = func(attempt int, err error, wait time.Duration) {
		fmt.Fprintf(stderr, "attempt %d failed (%s), retrying in %s\n",
			attempt, quizgen.MessageOf(err), wait.Round(time.Millisecond))
	}

	quiz, err := r.Generate(ctx, topic)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err != nil {
		_ = enc.Encode(map[string]string{"error": quizgen.MessageOf(err)})
		return fmt.Errorf("%s: %w", quizgen.KindOf(err), err)
	}
	return enc.Encode(map[string]any{"quiz": quiz})
}

func init() {
	generateCmd.Flags().Int("attempts", 1, "Total attempts on upstream failures")
}
