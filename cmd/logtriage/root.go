package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/logtriage/internal/config"
	"github.com/nao1215/logtriage/internal/database"
	"github.com/nao1215/logtriage/internal/log"
	"github.com/nao1215/logtriage/internal/model"
	"github.com/nao1215/logtriage/internal/pipeline"
	"github.com/spf13/cobra"
)

// completionMessage is printed once a run has written every report.
const completionMessage = "Triage complete: all reports written."

// NewRootCmd creates the root command for logtriage.
// Without a subcommand it runs the triage pipeline.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logtriage",
		Short: "Triage a web-server access log against a threat feed",
		Long: `logtriage extracts the requests of a web-server access log, counts the
URLs that answered 404 and flags every request whose URL contains a domain
listed in an HTML threat feed.

With no flags it reads access_log.txt and thread_feed.html from the current
directory and writes:
  url_status_report.txt   one "<url> <status>" line per request
  malware_candidates.csv  404 count per URL
  alert.json              requests matching the blacklist
  summary_report.json     totals of the run

Examples:
  # Triage the files in the current directory
  logtriage

  # Triage another log and also write a Markdown report
  logtriage --log /var/log/nginx/access.log --markdown triage.md

  # Record the run and list previous runs
  logtriage --save
  logtriage history`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: .logtriage in current or home directory)")
	cmd.PersistentFlags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")

	// Inputs
	cmd.Flags().String("log", config.DefaultLogFile, "Access log to triage")
	cmd.Flags().String("feed", config.DefaultFeedFile, "HTML threat feed holding the blacklist")
	cmd.Flags().String("feed-charset", "",
		"Force the feed encoding (e.g. windows-1252); detected when empty")

	// Outputs
	cmd.Flags().String("txt", config.DefaultURLStatusReportFile, "Output file for the URL/status listing")
	cmd.Flags().String("csv", config.DefaultMalwareCandidatesFile, "Output file for the 404 count CSV")
	cmd.Flags().String("alerts", config.DefaultAlertFile, "Output file for the blacklist alerts (JSON)")
	cmd.Flags().String("summary", config.DefaultSummaryFile, "Output file for the run summary (JSON)")
	cmd.Flags().String("markdown", "", "Also write a Markdown triage report to this file")
	cmd.Flags().Int("markdown-top", 0, "Rows in the Markdown \"Top 404 URLs\" table (default 10)")

	// History
	cmd.Flags().Bool("save", false, "Record this run in the history database")

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runRootCmd executes the triage run.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runTriage(ctx, cfg, logger, cmd.OutOrStdout())
}

// flagBinding maps a string flag to the Config field it overrides.
type flagBinding struct {
	name string
	dst  *string
}

// buildConfig creates a Config from defaults, the config file and flags.
// Flags win over the config file, but only when set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly requested config file must exist; the implicit
	// locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	bindings := []flagBinding{
		{"log", &cfg.LogPath},
		{"feed", &cfg.FeedPath},
		{"feed-charset", &cfg.FeedCharset},
		{"txt", &cfg.URLStatusReportPath},
		{"csv", &cfg.MalwareCandidatesPath},
		{"alerts", &cfg.AlertPath},
		{"summary", &cfg.SummaryPath},
		{"markdown", &cfg.MarkdownReportPath},
		{"history-dir", &cfg.DBDir},
	}
	for _, b := range bindings {
		if cmd.Flags().Lookup(b.name) == nil || !cmd.Flags().Changed(b.name) {
			continue
		}
		if *b.dst, err = cmd.Flags().GetString(b.name); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("markdown-top") != nil && cmd.Flags().Changed("markdown-top") {
		if cfg.MarkdownTopURLs, err = cmd.Flags().GetInt("markdown-top"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("save") != nil && cmd.Flags().Changed("save") {
		if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runTriage executes the pipeline for cfg and prints the completion message.
func runTriage(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Debug("starting triage",
		"log", cfg.LogPath,
		"feed", cfg.FeedPath,
		"saveToDB", cfg.SaveToDB,
	)

	var stepOpts []pipeline.DefaultPipelineOption
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
		stepOpts = append(stepOpts, pipeline.WithPipelineRecorder(db))
	}

	run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
	p := pipeline.DefaultPipeline(cfg, []pipeline.Option{pipeline.WithLogger(logger)}, stepOpts...)
	if err := p.Execute(ctx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("triage interrupted after %d step(s): %w", len(run.PerformedSteps), err)
		}
		return err
	}

	logger.Debug("triage finished",
		"duration", run.Duration,
		"steps", len(run.PerformedSteps),
		"alerts", len(run.Alerts),
	)
	fmt.Fprintln(out, completionMessage)
	return nil
}
