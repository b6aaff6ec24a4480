package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/nao1215/logtriage/internal/database"
	"github.com/nao1215/logtriage/internal/report"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many runs history shows without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// It lists runs recorded with --save.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous triage runs",
		Long: `History lists the triage runs recorded with --save, newest first.

Each row shows when the run started, the name of the access log, the three
summary totals and the first characters of the SHA3-256 digest of the
inputs. Runs with the same digest triaged identical files.

Examples:
  # Show the last 20 runs
  logtriage history

  # Show every run as JSON, alerts included
  logtriage history --limit 0 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolP("json", "j", false, "Output runs in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("invalid --limit %d: must be 0 or more", limit)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBDir, opts)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Use 'logtriage --save' to record a run.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		_, err := report.NewJSONWriter(cmd.OutOrStdout()).Encode(runs)
		return err
	}
	return writeHistoryTable(cmd.OutOrStdout(), runs)
}

// writeHistoryTable renders runs as a text table.
func writeHistoryTable(w io.Writer, runs []database.RunRecord) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet. Use 'logtriage --save' to record a run.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Started", "Access Log", "404 Requests", "404 URLs", "Alerts", "Digest")
	for _, r := range runs {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(r.LogPath),
			strconv.Itoa(r.Summary.TotalRequests),
			strconv.Itoa(r.Summary.Total404URLs),
			strconv.Itoa(r.Summary.TotalAlerts),
			shortDigest(r.InputDigest),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render history: %w", err)
		}
	}
	return table.Render()
}

// shortDigest returns the first 12 characters of a digest.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	if d == "" {
		return "-"
	}
	return d
}
