package main

import (
	"fmt"
	"os"
	"time"

	"fieldtrack.com/fieldtrack/attendance/app"
	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/utils"
	"github.com/spf13/cobra"
)

// parseDay reads a yyyy-MM-dd flag value, today when empty.
func parseDay(value string) (time.Time, error) {
	if value == "" {
		return utils.StartOfDay(time.Now()), nil
	}
	return utils.ParseDate(value)
}

func rosterCmd(opts *rootOptions) *cobra.Command {
	var (
		date   string
		notify bool
	)
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print who has and has not checked in for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				rc, err := a.Roster.Classify(cmd.Context(), day)
				if err != nil {
					return err
				}
				report := core.FormatRoster(rc)
				fmt.Fprintln(cmd.OutOrStdout(), report)
				if notify {
					return a.Alerter.Info(report)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to report (yyyy-MM-dd), defaults to today")
	cmd.Flags().BoolVar(&notify, "notify", false, "also post the report to the info channel")
	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		start string
		end   string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write per-user visit counts to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDay(start)
			if err != nil {
				return err
			}
			to := from
			if end != "" {
				if to, err = utils.ParseDate(end); err != nil {
					return err
				}
			}
			if out == "" {
				out = fmt.Sprintf("visits-%s.xlsx", utils.DateKey(from))
			}

			return opts.withApp(cmd.Context(), func(a *app.App) error {
				rows, err := a.Roster.UserVisitCounts(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := core.WriteVisitReport(f, rows); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day (yyyy-MM-dd), defaults to today")
	cmd.Flags().StringVar(&end, "end", "", "last day (yyyy-MM-dd), defaults to start")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func mediaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Inspect stored evidence photos",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "orphans",
		Short: "List uploaded photos that no attendance event references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				orphans, err := a.OrphanedMedia(cmd.Context())
				if err != nil {
					return err
				}
				for _, key := range orphans {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	})
	return cmd
}
