package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quizgen"
	"github.com/abhisek/quizgen/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged quiz generation requests",
	Long: `Inspect the model requests recorded in the event log.

Every generation attempt is logged with its prompt, the raw reply and the
outcome, including replies that were rejected and never shown to a user.`,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generation requests with their topic and outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		failed, _ := cmd.Flags().GetBool("failed")

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if !all {
			opts.Purpose = llm.PurposeQuizGen
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		rows := make([]generationRow, 0, len(events))
		for _, e := range events {
			row := newGenerationRow(e)
			if failed && row.Outcome == outcomeOK {
				continue
			}
			rows = append(rows, row)
		}
		renderGenerationList(cmd.OutOrStdout(), rows)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one generation request: topic, outcome, parsed quiz and raw reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		showPrompt, _ := cmd.Flags().GetBool("prompt")

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		renderGenerationDetail(cmd.OutOrStdout(), *e, showPrompt)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request counts, failure rates, token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := repo.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		renderUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

// Generation outcomes, as shown in the list and detail views.
const (
	outcomeOK          = "ok"
	outcomeMalformed   = "malformed"
	outcomeStructural  = "structural"
	outcomeTruncated   = "truncated"
	outcomeRateLimited = "rate-limited"
	outcomeTimeout     = "timeout"
	outcomeUpstream    = "upstream"
)

// generationRow is one logged request reduced to what an operator scans for.
type generationRow struct {
	store.LLMEventRecord
	Topic   string
	Outcome string
	Reason  string // why the reply was unusable, empty when Outcome is ok
}

func newGenerationRow(e store.LLMEventRecord) generationRow {
	row := generationRow{LLMEventRecord: e, Topic: quizgen.TopicFromTranscript(e.RequestBody)}
	row.Outcome, row.Reason = classifyGeneration(e)
	return row
}

// classifyGeneration replays the reply through the quiz parser, since a
// provider can accept a reply the quiz rules later reject.
func classifyGeneration(e store.LLMEventRecord) (outcome, reason string) {
	msg := e.ErrorMessage
	switch {
	case !e.Success && strings.Contains(msg, "max tokens exceeded"):
		return outcomeTruncated, msg
	case !e.Success && strings.Contains(msg, "rate limited"):
		return outcomeRateLimited, msg
	case !e.Success && strings.Contains(msg, "deadline exceeded"):
		return outcomeTimeout, msg
	case !e.Success && e.ResponseBody == "":
		return outcomeUpstream, msg
	}

	if e.Purpose != llm.PurposeQuizGen {
		if e.Success {
			return outcomeOK, ""
		}
		return outcomeUpstream, msg
	}

	if _, err := quizgen.ParseReply([]byte(e.ResponseBody)); err != nil {
		if quizgen.KindOf(err) == quizgen.KindStructural {
			return outcomeStructural, err.Error()
		}
		return outcomeMalformed, err.Error()
	}
	return outcomeOK, ""
}

func renderGenerationList(w io.Writer, rows []generationRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No generation requests found.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-16s  %-24s  %-20s  %6s  %6s  %7s  %s\n",
		"ID", "Time", "Topic", "Model", "In", "Out", "Ms", "Outcome")
	fmt.Fprintln(w, strings.Repeat("─", 104))
	for _, r := range rows {
		topic := r.Topic
		if topic == "" {
			topic = "(" + r.Purpose + ")"
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-24s  %-20s  %6d  %6d  %7d  %s\n",
			r.ID,
			r.Timestamp.Local().Format("01-02 15:04:05"),
			truncate(topic, 24),
			truncate(r.Model, 20),
			r.InputTokens,
			r.OutputTokens,
			r.LatencyMs,
			r.Outcome,
		)
	}
}

func renderGenerationDetail(w io.Writer, e store.LLMEventRecord, showPrompt bool) {
	row := newGenerationRow(e)
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(w, "Request #%d  %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if row.Topic != "" {
		fmt.Fprintf(w, "Topic:     %s\n", row.Topic)
	}
	fmt.Fprintf(w, "Model:     %s (%s)\n", e.Model, e.Provider)
	fmt.Fprintf(w, "Tokens:    %d in / %d out, %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
	if cost := llm.LookupCost(e.Model); cost != nil {
		fmt.Fprintf(w, "Cost:      %s\n", formatCost(cost.Cost(e.InputTokens, e.OutputTokens)))
	}
	fmt.Fprintf(w, "Outcome:   %s\n", row.Outcome)
	if row.Reason != "" {
		fmt.Fprintf(w, "Reason:    %s\n", row.Reason)
	}

	if row.Outcome == outcomeOK && e.Purpose == llm.PurposeQuizGen {
		questions, _ := quizgen.ParseReply([]byte(e.ResponseBody))
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, "QUIZ")
		fmt.Fprintln(w, sep)
		for i, q := range questions {
			fmt.Fprintf(w, "%d. %s\n", i+1, q.Question)
			for _, key := range quizgen.Keys {
				mark := " "
				if key == q.CorrectAnswer {
					mark = "*"
				}
				fmt.Fprintf(w, "   %s %s) %s\n", mark, key, q.Options.Get(key))
			}
		}
	}

	if showPrompt {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, "PROMPT")
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, orNotCaptured(e.RequestBody))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, "RAW REPLY")
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, orNotCaptured(e.ResponseBody))
}

func renderUsage(w io.Writer, byPurpose []store.LLMUsageStats, byModel []store.LLMModelUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No model requests recorded yet.")
		return
	}

	fmt.Fprintln(w, "Requests by Purpose")
	fmt.Fprintln(w, strings.Repeat("─", 64))
	fmt.Fprintf(w, "%-20s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg Ms")
	for _, st := range byPurpose {
		fmt.Fprintf(w, "%-20s  %6d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Models")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	fmt.Fprintf(w, "%-28s  %6s  %7s  %10s  %10s  %9s\n", "Model", "Calls", "Failed", "Input", "Output", "Cost")

	var total float64
	var unpriced []string
	for _, mu := range byModel {
		costCol := "?"
		if cost := llm.LookupCost(mu.Model); cost != nil {
			c := cost.Cost(mu.InputTokens, mu.OutputTokens)
			total += c
			costCol = formatCost(c)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Fprintf(w, "%-28s  %6d  %6.0f%%  %10d  %10d  %9s\n",
			truncate(mu.Model, 28), mu.Calls, failureRate(mu), mu.InputTokens, mu.OutputTokens, costCol)
	}

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintln(w, strings.Repeat("─", 78))
	fmt.Fprintf(w, "%-28s  %6s  %7s  %10s  %10s  %9s\n", label, "", "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

func failureRate(mu store.LLMModelUsage) float64 {
	if mu.Calls == 0 {
		return 0
	}
	return 100 * float64(mu.Failures) / float64(mu.Calls)
}

func orNotCaptured(s string) string {
	if s == "" {
		return "(not captured)"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().Bool("all", false, "Include requests of every purpose, not just quiz generation")
	llmListCmd.Flags().Bool("failed", false, "Only show requests whose reply could not be used")
	llmViewCmd.Flags().Bool("prompt", false, "Also print the full prompt sent to the model")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
