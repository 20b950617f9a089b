package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/history"
	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit    int
		since    time.Duration
		clearAll bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(project.HistoryPath(a.config))
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if clearAll {
				n, err := store.Clear()
				if err != nil {
					return err
				}
				a.logger(cmd).Infof("cleared %d build record(s)", n)
				fmt.Fprintf(out, "removed %d record(s)\n", n)
				return nil
			}

			var records []model.BuildRecord
			if since > 0 {
				records, err = store.Since(time.Now().Add(-since))
			} else {
				records, err = store.List(limit)
			}
			if err != nil {
				return errors.Wrap(err, "failed to read history")
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "no builds recorded")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tPROJECT\tSIZE\tSPRITES\tPADDING\tUSED\tOUTPUT")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%.1f%%\t%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Project,
					r.Width, r.Height, r.Sprites, r.Padding, r.Utilization*100, r.Output)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many builds, 0 for all")
	cmd.Flags().DurationVar(&since, "since", 0, "show builds from this long ago, oldest first")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all recorded builds")
	return cmd
}
