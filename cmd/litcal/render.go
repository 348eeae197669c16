package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

func renderCmd() *cobra.Command {
	var (
		flags  calendarFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch a calendar and write its table",
		Example: `  litcal render --year 2025 -o first_column_grouping=BY_MONTH -o psalter_week_column=true
  litcal render --locale it --nation IT --format json --output table.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.tableOptions()
			if err != nil {
				return err
			}
			wc, err := webcalendar.New(log, nil, opts...)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()

			switch strings.ToLower(format) {
			case "html":
				wc.AttachTo(webcalendar.WriterTarget{W: out})
			case "json":
				wc.AttachTo(jsonTarget{out})
			default:
				return fmt.Errorf("unknown format %q (valid: html, json)", format)
			}

			client, closeClient, err := openClient(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer closeClient()

			// Fetch mounts the table through the calendar's listener.
			client.OnCalendarFetched(wc.OnCalendarFetched)
			res, err := client.Fetch(cmd.Context(), flags.request())
			if err != nil {
				return err
			}
			log.Debug("rendered calendar",
				"url", res.URL,
				"status", string(res.Status),
				"events", len(res.Dataset.Events),
			)
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html or json")
	cmd.Flags().StringVar(&output, "output", "", "Write to this file instead of stdout")
	return cmd
}

// jsonTarget mounts tables as indented JSON.
type jsonTarget struct {
	w io.Writer
}

func (j jsonTarget) Mount(t *webcalendar.Table) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// openOutput returns stdout when path is empty, else the created file.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
