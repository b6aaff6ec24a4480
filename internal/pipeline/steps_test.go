package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/logtriage/internal/config"
	"github.com/nao1215/logtriage/internal/model"
)

const testAccessLog = `127.0.0.1 - - [10/Oct/2024:13:55:36 +0000] "GET /index.html HTTP/1.1" 200 512
127.0.0.1 - - [10/Oct/2024:13:55:37 +0000] "GET /malware.exe HTTP/1.1" 404 0
garbage line without a request
10.0.0.7 - - [10/Oct/2024:13:55:38 +0000] "POST /upload?next=evil.example HTTP/1.1" 302 0
10.0.0.7 - - [10/Oct/2024:13:55:39 +0000] "GET /malware.exe HTTP/1.1" 404 0
`

const testFeed = `<html><body>
<ul>
  <li><a href="/t/1"> malware.exe </a></li>
  <li><a href="/t/2">evil.example</a></li>
  <li><a href="/t/3">   </a></li>
  <li><a href="/t/4">malware.exe</a></li>
</ul>
</body></html>`

// newTestConfig writes the inputs into a temp dir and points every output there.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.LogPath = filepath.Join(dir, config.DefaultLogFile)
	cfg.FeedPath = filepath.Join(dir, config.DefaultFeedFile)
	cfg.URLStatusReportPath = filepath.Join(dir, config.DefaultURLStatusReportFile)
	cfg.MalwareCandidatesPath = filepath.Join(dir, config.DefaultMalwareCandidatesFile)
	cfg.AlertPath = filepath.Join(dir, config.DefaultAlertFile)
	cfg.SummaryPath = filepath.Join(dir, config.DefaultSummaryFile)

	if err := os.WriteFile(cfg.LogPath, []byte(testAccessLog), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.FeedPath, []byte(testFeed), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// fakeRecorder captures saved runs.
type fakeRecorder struct {
	runs []*model.TriageRun
	err  error
}

func (f *fakeRecorder) SaveRun(_ context.Context, run *model.TriageRun) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), nil
}

// TestDefaultPipeline tests a full run over files on disk.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("writes the four reports", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		if err := DefaultPipeline(cfg, nil).Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantTxt := "/index.html 200\n" +
			"/malware.exe 404\n" +
			"/upload?next=evil.example 302\n" +
			"/malware.exe 404\n"
		if got := readFile(t, cfg.URLStatusReportPath); got != wantTxt {
			t.Errorf("url status report: expected %q, got %q", wantTxt, got)
		}

		wantCSV := "URL,404 Count\r\n/malware.exe,2\r\n"
		if got := readFile(t, cfg.MalwareCandidatesPath); got != wantCSV {
			t.Errorf("malware candidates: expected %q, got %q", wantCSV, got)
		}

		var alerts []model.AlertRecord
		if err := json.Unmarshal([]byte(readFile(t, cfg.AlertPath)), &alerts); err != nil {
			t.Fatalf("invalid alert.json: %v", err)
		}
		wantAlerts := []model.AlertRecord{
			{URL: "/malware.exe", Status: "404", BlacklistDomain: "malware.exe"},
			{URL: "/upload?next=evil.example", Status: "302", BlacklistDomain: "evil.example"},
			{URL: "/malware.exe", Status: "404", BlacklistDomain: "malware.exe"},
		}
		if !slices.Equal(alerts, wantAlerts) {
			t.Errorf("alerts: expected %v, got %v", wantAlerts, alerts)
		}

		var summary model.Summary
		if err := json.Unmarshal([]byte(readFile(t, cfg.SummaryPath)), &summary); err != nil {
			t.Fatalf("invalid summary_report.json: %v", err)
		}
		if summary != (model.Summary{TotalRequests: 2, Total404URLs: 1, TotalAlerts: 3}) {
			t.Errorf("unexpected summary %+v", summary)
		}

		if run.LinesRead != 5 {
			t.Errorf("expected 5 lines read, got %d", run.LinesRead)
		}
		if run.Domains.Len() != 2 {
			t.Errorf("expected 2 domains, got %d", run.Domains.Len())
		}
	})

	t.Run("step order", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		want := []string{
			"extract_log",
			"write_url_status",
			"write_malware_candidates",
			"extract_blacklist",
			"match_blacklist",
			"summarize",
			"write_alerts",
			"write_summary",
		}
		if got := DefaultPipeline(cfg, nil).StepNames(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("missing feed keeps earlier reports", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		if err := os.Remove(cfg.FeedPath); err != nil {
			t.Fatal(err)
		}

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		err := DefaultPipeline(cfg, nil).Execute(context.Background(), run)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected fs.ErrNotExist, got %v", err)
		}

		for _, p := range []string{cfg.URLStatusReportPath, cfg.MalwareCandidatesPath} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("expected %s to be written: %v", p, err)
			}
		}
		for _, p := range []string{cfg.AlertPath, cfg.SummaryPath} {
			if _, err := os.Stat(p); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("expected %s not to be written, got %v", p, err)
			}
		}
	})

	t.Run("missing log writes nothing", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		if err := os.Remove(cfg.LogPath); err != nil {
			t.Fatal(err)
		}

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		if err := DefaultPipeline(cfg, nil).Execute(context.Background(), run); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(cfg.URLStatusReportPath); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected no report, got %v", err)
		}
		if len(run.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", run.PerformedSteps)
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		if err := os.WriteFile(cfg.LogPath, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(cfg.FeedPath, []byte("<html></html>"), 0o600); err != nil {
			t.Fatal(err)
		}

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		if err := DefaultPipeline(cfg, nil).Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := readFile(t, cfg.URLStatusReportPath); got != "" {
			t.Errorf("expected empty listing, got %q", got)
		}
		if got := readFile(t, cfg.MalwareCandidatesPath); got != "URL,404 Count\r\n" {
			t.Errorf("expected header only, got %q", got)
		}
		if got := strings.TrimSpace(readFile(t, cfg.AlertPath)); got != "[]" {
			t.Errorf("expected [], got %q", got)
		}
		var summary model.Summary
		if err := json.Unmarshal([]byte(readFile(t, cfg.SummaryPath)), &summary); err != nil {
			t.Fatal(err)
		}
		if summary != (model.Summary{}) {
			t.Errorf("expected zero summary, got %+v", summary)
		}
	})

	t.Run("markdown report", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		cfg.MarkdownReportPath = filepath.Join(filepath.Dir(cfg.LogPath), "reports", "triage.md")
		cfg.MarkdownTopURLs = 5

		p := DefaultPipeline(cfg, nil)
		if names := p.StepNames(); names[len(names)-1] != "write_markdown" {
			t.Errorf("expected markdown step last, got %v", names)
		}

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := readFile(t, cfg.MarkdownReportPath); !strings.Contains(got, "# Log Triage Report") {
			t.Errorf("unexpected markdown report %q", got)
		}
	})

	t.Run("records history", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		rec := &fakeRecorder{}

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		if err := DefaultPipeline(cfg, nil, WithPipelineRecorder(rec)).Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rec.runs) != 1 {
			t.Fatalf("expected 1 saved run, got %d", len(rec.runs))
		}
		if len(run.InputDigest) != 64 {
			t.Errorf("expected input digest, got %q", run.InputDigest)
		}
		if run.Summary == nil || run.Summary.TotalAlerts != 3 {
			t.Errorf("expected summary before save, got %+v", run.Summary)
		}
	})

	t.Run("history failure fails the run", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		errDB := errors.New("disk full")
		rec := &fakeRecorder{err: errDB}

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		err := DefaultPipeline(cfg, nil, WithPipelineRecorder(rec)).Execute(context.Background(), run)
		if !errors.Is(err, errDB) {
			t.Errorf("expected wrapped errDB, got %v", err)
		}
	})

	t.Run("unknown charset", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		cfg.FeedCharset = "no-such-charset"

		run := model.NewTriageRun(cfg.LogPath, cfg.FeedPath)
		if err := DefaultPipeline(cfg, nil).Execute(context.Background(), run); err == nil {
			t.Error("expected error for unknown charset")
		}
	})
}
