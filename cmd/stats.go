package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz attempt history and scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		repo := st.EventRepo()

		stats, err := repo.AttemptStats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if stats.Attempts == 0 {
			fmt.Println("No quiz attempts recorded yet.")
			return nil
		}

		fmt.Printf("Attempts:  %d (%d distinct quizzes)\n", stats.Attempts, stats.Quizzes)
		fmt.Printf("Average:   %.1f%%\n", stats.AvgPercentage)
		fmt.Printf("Best:      %d%%\n", stats.BestPercent)

		bands := make([]string, 0, len(stats.ByBand))
		for b := range stats.ByBand {
			bands = append(bands, b)
		}
		sort.Strings(bands)
		parts := make([]string, 0, len(bands))
		for _, b := range bands {
			parts = append(parts, fmt.Sprintf("%s=%d", b, stats.ByBand[b]))
		}
		fmt.Printf("Bands:     %s\n\n", strings.Join(parts, "  "))

		attempts, err := repo.QueryAttempts(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		fmt.Printf("%-5s  %-19s  %-32s  %-5s  %4s  %-6s  %s\n",
			"ID", "Timestamp", "Topic", "Score", "Pct", "Band", "Retake")
		fmt.Println(strings.Repeat("─", 90))
		for _, a := range attempts {
			retake := ""
			if a.Retake {
				retake = "yes"
			}
			fmt.Printf("%-5d  %-19s  %-32s  %d/%-3d  %3d%%  %-6s  %s\n",
				a.ID,
				a.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(a.Topic, 32),
				a.Score, a.Total,
				a.Percentage,
				a.Band,
				retake,
			)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
}
