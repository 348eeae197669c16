// Package main is the entry point for the litcal command: the calendar
// table server and its offline tools.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/litcal-webcalendar/internal/config"
	"github.com/zapponejosh/litcal-webcalendar/internal/logger"
)

var (
	cfg *config.Config
	log *slog.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "litcal",
		Short:         "Liturgical calendar tables",
		Long:          "Fetch liturgical calendars from the Liturgical Calendar API and lay them out as HTML tables, ICS feeds and a small HTTP service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c

			// Logs go to stderr so rendered output can be piped.
			log = logger.Setup(cfg, os.Stderr)
			return nil
		},
	}

	root.AddCommand(
		serveCmd(),
		renderCmd(),
		icsCmd(),
		keydatesCmd(),
		verifyCmd(),
	)
	return root
}
