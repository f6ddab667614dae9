package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mangarchive/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent archive runs",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				outcomes, err := store.ListChapters(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return renderJSON(out, outcomes)
				}
				if len(outcomes) == 0 {
					fmt.Fprintf(out, "No chapters recorded for run %s\n", id)
					return nil
				}
				rows := make([][]string, 0, len(outcomes))
				for _, o := range outcomes {
					rows = append(rows, []string{o.Key, o.Status, strconv.Itoa(o.Pages), strconv.Itoa(o.Fetched), o.EntryID})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Chapter", "Status", "Pages", "Fetched", "Entry"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(out, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Collection,
					run.Status,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					formatRunDuration(run),
					strconv.Itoa(run.Selected),
					strconv.Itoa(run.Completed),
					strconv.Itoa(run.External),
					strconv.Itoa(run.Fetched),
					run.Error,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Collection", "Status", "Started", "Duration", "Selected", "Completed", "External", "Fetched", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show chapter outcomes for one run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print rows as JSON")
	return cmd
}

func formatRunDuration(run history.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.Duration().Round(time.Second).String()
}
