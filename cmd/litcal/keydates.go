package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/litcal-webcalendar/internal/calendar"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

func keydatesCmd() *cobra.Command {
	var (
		year       int
		liturgical bool
		epiphany   string
	)

	cmd := &cobra.Command{
		Use:   "keydates",
		Short: "Print the reference dates of a year",
		Long:  "Print the computed reference dates of a year (Easter, Pentecost, Advent and the rest) without contacting the API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
				if liturgical {
					year = calendar.LiturgicalYear(time.Now())
				}
			}
			if year < 1583 {
				return fmt.Errorf("year %d predates the Gregorian calendar", year)
			}

			dates := calendar.ComputeKeyDates(year, liturgical, epiphany)
			easter := dates[calendar.KeyEaster]

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Year\t%d (Sunday cycle %s, weekday cycle %s)\n",
				year, calendar.SundayCycle(easter), calendar.WeekdayCycle(easter))
			for _, key := range dates.Keys() {
				d := dates[key]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, d.Format(time.DateOnly), d.Weekday())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Year (default: the current year)")
	cmd.Flags().BoolVar(&liturgical, "liturgical", false, "Treat the year as a liturgical year opening with Advent of the previous year")
	cmd.Flags().StringVar(&epiphany, "epiphany", calendar.EpiphanyJan6, "JAN6 or SUNDAY_JAN2_JAN8")
	return cmd
}

func verifyCmd() *cobra.Command {
	var flags calendarFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a fetched calendar against the computed reference dates",
		Long:  "Fetch a calendar and compare its reference events (Easter, Pentecost, Advent and the rest) with the locally computed dates. Exits non-zero on any difference.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := openClient(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer closeClient()

			res, err := client.Get(cmd.Context(), flags.request())
			if err != nil {
				return err
			}
			ds := res.Dataset

			expected := calendar.ComputeKeyDates(ds.Settings.Year, ds.IsLiturgicalYear(), ds.Settings.Epiphany)
			mismatches := expected.Compare(eventDates(ds, expected))

			fmt.Fprintf(os.Stdout, "%s: %d reference dates checked\n", res.URL, len(expected))
			for _, m := range mismatches {
				fmt.Fprintf(os.Stdout, "  %s\n", m)
			}
			if len(mismatches) > 0 {
				return fmt.Errorf("%d of %d reference dates differ", len(mismatches), len(expected))
			}
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

// eventDates returns the date of the first event of ds carrying each key
// of want.
func eventDates(ds *webcalendar.Dataset, want calendar.KeyDates) map[string]time.Time {
	out := make(map[string]time.Time, len(want))
	for _, ev := range ds.Events {
		if _, ok := want[ev.EventKey]; !ok {
			continue
		}
		if _, seen := out[ev.EventKey]; !seen {
			out[ev.EventKey] = webcalendar.DayOf(ev.Date)
		}
	}
	return out
}
