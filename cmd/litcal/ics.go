package main

import (
	"github.com/spf13/cobra"

	"github.com/zapponejosh/litcal-webcalendar/internal/export"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

func icsCmd() *cobra.Command {
	var (
		flags  calendarFlags
		name   string
		domain string
		output string
	)

	cmd := &cobra.Command{
		Use:     "ics",
		Short:   "Fetch a calendar and write it as an ICS feed",
		Example: `  litcal ics --year 2025 --diocese ROMA --output roma-2025.ics`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.tableOptions()
			if err != nil {
				return err
			}
			o, err := webcalendar.DefaultOptions().Apply(opts...)
			if err != nil {
				return err
			}

			client, closeClient, err := openClient(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer closeClient()

			res, err := client.Get(cmd.Context(), flags.request())
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()

			if name == "" {
				name = export.CalendarName(res.Dataset)
			}
			return export.WriteICS(out, res.Dataset, export.ICSOptions{
				Name:         name,
				Locale:       webcalendar.NewLocaleCache().Get(o.Locale),
				GradeDisplay: o.GradeDisplay,
				Domain:       domain,
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&name, "name", "", "Calendar name (default: the diocese, nation or general calendar and the year)")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain part of event UIDs (default: litcal)")
	cmd.Flags().StringVar(&output, "output", "", "Write to this file instead of stdout")
	return cmd
}
