package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /api/generate-quiz over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		settings, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			settings.HTTP.Addr = addr
		}

		gen, status, err := newGenerator(ctx, settings.LLM, st.EventRepo())
		if err != nil {
			return err
		}
		if status == statusNotConfigured {
			fmt.Fprintln(os.Stderr, "warning: LLM provider not configured; /api/generate-quiz will return 500")
		}

		h := server.NewRouter(gen, server.Options{
			CORSOrigins:    settings.HTTP.CORSOrigins,
			RequestTimeout: settings.LLM.Timeout + server.TimeoutSlack,
		})

		fmt.Fprintf(os.Stderr, "quizgen listening on %s (%s)\n", settings.HTTP.Addr, status)
		return server.ListenAndServe(ctx, settings.HTTP.Addr, h)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
