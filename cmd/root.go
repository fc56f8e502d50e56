package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/app"
	"github.com/abhisek/quizgen/internal/config"
	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quizgen"
	"github.com/abhisek/quizgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizgen",
	Short: "Generate and take multiple-choice quizzes on any topic",
	Long:  "QuizGen turns a topic into a five-question multiple-choice quiz using a language model, then lets you take it in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZGEN_DB and db_path)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/quizgen/config.yaml)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome screen")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings reads the config file and environment, then applies --db.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	f, err := config.LoadOrDefault(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %w", err)
	}
	s, err := config.Resolve(f)
	if err != nil {
		return config.Settings{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		s.DBPath = p
	}
	if err := store.EnsureDir(s.DBPath); err != nil {
		return config.Settings{}, fmt.Errorf("create database dir: %w", err)
	}
	return s, nil
}

// openStore resolves settings and opens the event store.
func openStore(cmd *cobra.Command) (config.Settings, *store.Store, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return s, nil, err
	}
	st, err := store.Open(s.DBPath)
	if err != nil {
		return s, nil, fmt.Errorf("open store: %w", err)
	}
	return s, st, nil
}

const statusNotConfigured = "not configured"

// newGenerator builds the quiz generator for cfg. A missing credential does
// not fail here; the generator reports KindNotConfigured when used.
func newGenerator(ctx context.Context, cfg llm.Config, eventRepo store.EventRepo) (quizgen.Generator, string, error) {
	provider, err := llm.NewProvider(ctx, cfg, eventRepo)
	if err != nil {
		var nc *llm.ErrNotConfigured
		if errors.As(err, &nc) {
			return quizgen.Unconfigured(err), statusNotConfigured, nil
		}
		return nil, "", err
	}
	return quizgen.New(provider, quizgen.DefaultConfig()), cfg.Provider + " · " + provider.ModelID(), nil
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	settings, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	gen, status, err := newGenerator(ctx, settings.LLM, eventRepo)
	if err != nil {
		return err
	}
	if status == statusNotConfigured {
		fmt.Fprintln(os.Stderr, "LLM provider not configured: set QUIZGEN_OPENAI_API_KEY (or another provider key).")
	}

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{
		Generator:   gen,
		EventRepo:   eventRepo,
		Status:      status,
		SkipWelcome: noSplash,
	})
}
