package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/logtriage/internal/accesslog"
	"github.com/nao1215/logtriage/internal/blacklist"
	"github.com/nao1215/logtriage/internal/config"
	"github.com/nao1215/logtriage/internal/model"
	"github.com/nao1215/logtriage/internal/report"
	"github.com/nao1215/logtriage/internal/triage"
)

// ExtractLogStep reads the access log into run.Entries and run.Tally.
type ExtractLogStep struct {
	path   string
	logger *slog.Logger
}

// NewExtractLogStep creates a step reading the access log at path.
func NewExtractLogStep(path string, logger *slog.Logger) *ExtractLogStep {
	return &ExtractLogStep{path: path, logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *ExtractLogStep) Name() string {
	return "extract_log"
}

// Do executes the log extraction step.
func (s *ExtractLogStep) Do(_ context.Context, run *model.TriageRun) error {
	res, err := accesslog.ExtractFile(s.path)
	if err != nil {
		return err
	}

	run.Entries = res.Entries
	run.Tally = res.Tally
	run.LinesRead = res.LinesRead

	if res.LongLinesSkipped > 0 {
		s.logger.Warn("skipped oversized access log lines",
			"path", s.path,
			"count", res.LongLinesSkipped,
		)
	}
	s.logger.Debug("access log extracted",
		"path", s.path,
		"lines", res.LinesRead,
		"requests", len(res.Entries),
		"not_found_urls", res.Tally.Len(),
	)
	return nil
}

// ReportStep renders one report file from the run.
type ReportStep struct {
	name      string
	path      string
	newWriter report.WriterFunc
	logger    *slog.Logger
}

// NewReportStep creates a step writing path with the writer built by newWriter.
func NewReportStep(name, path string, newWriter report.WriterFunc, logger *slog.Logger) *ReportStep {
	return &ReportStep{
		name:      name,
		path:      path,
		newWriter: newWriter,
		logger:    loggerOrDefault(logger),
	}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return s.name
}

// Do writes the report file.
func (s *ReportStep) Do(_ context.Context, run *model.TriageRun) error {
	if err := report.WriteFile(s.path, s.newWriter, run); err != nil {
		return err
	}
	s.logger.Debug("report written", "step", s.name, "path", s.path)
	return nil
}

// BlacklistStep scrapes the threat feed into run.Domains.
type BlacklistStep struct {
	path    string
	charset string
	logger  *slog.Logger
}

// NewBlacklistStep creates a step reading the feed at path.
// charset forces the feed encoding; empty means detect it.
func NewBlacklistStep(path, charset string, logger *slog.Logger) *BlacklistStep {
	return &BlacklistStep{path: path, charset: charset, logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *BlacklistStep) Name() string {
	return "extract_blacklist"
}

// Do executes the blacklist extraction step.
func (s *BlacklistStep) Do(_ context.Context, run *model.TriageRun) error {
	var opts []blacklist.Option
	if s.charset != "" {
		opts = append(opts, blacklist.WithCharset(s.charset))
	}

	domains, err := blacklist.ExtractFile(s.path, opts...)
	if err != nil {
		return err
	}
	run.Domains = domains

	s.logger.Debug("blacklist extracted", "path", s.path, "domains", domains.Len())
	return nil
}

// MatchStep cross-references run.Entries with run.Domains.
type MatchStep struct {
	logger *slog.Logger
}

// NewMatchStep creates the blacklist matching step.
func NewMatchStep(logger *slog.Logger) *MatchStep {
	return &MatchStep{logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *MatchStep) Name() string {
	return "match_blacklist"
}

// Do executes the matching step.
func (s *MatchStep) Do(_ context.Context, run *model.TriageRun) error {
	run.Alerts = triage.Match(run.Entries, run.Domains)
	for _, a := range run.Alerts {
		s.logger.Debug("blacklist hit",
			"url", a.URL,
			"status", a.Status,
			"domain", a.BlacklistDomain,
		)
	}
	return nil
}

// SummaryStep fills run.Summary.
type SummaryStep struct{}

// NewSummaryStep creates the summary step.
func NewSummaryStep() *SummaryStep {
	return &SummaryStep{}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summarize"
}

// Do executes the summary step.
func (s *SummaryStep) Do(_ context.Context, run *model.TriageRun) error {
	run.Summary = triage.Summarize(run.Tally, run.Alerts)
	return nil
}

// DigestStep fingerprints the two input files into run.InputDigest.
type DigestStep struct{}

// NewDigestStep creates the digest step.
func NewDigestStep() *DigestStep {
	return &DigestStep{}
}

// Name returns the step name.
func (s *DigestStep) Name() string {
	return "digest_inputs"
}

// Do executes the digest step.
func (s *DigestStep) Do(_ context.Context, run *model.TriageRun) error {
	digest, err := triage.Digest(run.LogPath, run.FeedPath)
	if err != nil {
		return err
	}
	run.InputDigest = digest
	return nil
}

// RunRecorder stores finished runs.
// *database.HistoryDB implements it.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *model.TriageRun) (int64, error)
}

// HistoryStep records the run with a RunRecorder.
type HistoryStep struct {
	recorder RunRecorder
	logger   *slog.Logger
}

// NewHistoryStep creates the history step.
func NewHistoryStep(recorder RunRecorder, logger *slog.Logger) *HistoryStep {
	return &HistoryStep{recorder: recorder, logger: loggerOrDefault(logger)}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "save_history"
}

// Do executes the history step.
func (s *HistoryStep) Do(ctx context.Context, run *model.TriageRun) error {
	run.Duration = time.Since(run.StartedAt)

	id, err := s.recorder.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save run history: %w", err)
	}
	s.logger.Debug("run saved", "id", id)
	return nil
}

// DefaultPipelineConfig holds the optional parts of the default pipeline.
type DefaultPipelineConfig struct {
	// Recorder receives the finished run. Nil disables the history step.
	Recorder RunRecorder
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineRecorder enables the history step.
func WithPipelineRecorder(r RunRecorder) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Recorder = r
	}
}

// DefaultPipeline creates the standard triage pipeline for cfg.
//
// The flat listing and the 404 CSV are written before the feed is opened,
// so a missing feed still leaves those two files behind.
func DefaultPipeline(cfg *config.Config, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)
	logger := p.logger

	dc := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(dc)
	}

	p.AddSteps(
		NewExtractLogStep(cfg.LogPath, logger),
		NewReportStep("write_url_status", cfg.URLStatusReportPath, report.NewFlatWriter, logger),
		NewReportStep("write_malware_candidates", cfg.MalwareCandidatesPath, report.NewTallyCSVWriter, logger),
		NewBlacklistStep(cfg.FeedPath, cfg.FeedCharset, logger),
		NewMatchStep(logger),
		NewSummaryStep(),
		NewReportStep("write_alerts", cfg.AlertPath, report.NewAlertsWriter, logger),
		NewReportStep("write_summary", cfg.SummaryPath, report.NewSummaryWriter, logger),
	)

	if cfg.MarkdownReportPath != "" {
		topURLs := cfg.MarkdownTopURLs
		p.AddStep(NewReportStep("write_markdown", cfg.MarkdownReportPath, func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w, report.WithTopURLs(topURLs))
		}, logger))
	}

	if dc.Recorder != nil {
		p.AddSteps(
			NewDigestStep(),
			NewHistoryStep(dc.Recorder, logger),
		)
	}

	return p
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
