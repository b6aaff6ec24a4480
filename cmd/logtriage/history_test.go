package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/logtriage/internal/database"
	"github.com/nao1215/logtriage/internal/model"
)

// TestNewHistoryCmd tests the history command flags.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Use != "history" {
		t.Errorf("expected use 'history', got %q", cmd.Use)
	}

	limit := cmd.Flags().Lookup("limit")
	if limit == nil || limit.DefValue != "20" {
		t.Errorf("expected --limit defaulting to 20, got %v", limit)
	}
	if cmd.Flags().Lookup("json") == nil {
		t.Error("expected --json flag")
	}
}

// TestHistoryCmd tests listing runs recorded with --save.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("no database yet", func(t *testing.T) {
		t.Parallel()

		ws := newWorkspace(t)
		stdout, _, err := execute(t, "history", "-c", ws.config, "--history-dir", ws.path("history"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No runs recorded yet") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("lists saved runs as a table", func(t *testing.T) {
		t.Parallel()

		ws := newWorkspace(t)
		for range 2 {
			if _, _, err := execute(t, ws.args("--save")...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		stdout, _, err := execute(t, "history", "-c", ws.config, "--history-dir", ws.path("history"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(stdout, "access_log.txt") != 2 {
			t.Errorf("expected two runs, got %q", stdout)
		}
		if strings.Contains(stdout, ws.dir) {
			t.Errorf("expected only the log file name, got %q", stdout)
		}
	})

	t.Run("json output with limit", func(t *testing.T) {
		t.Parallel()

		ws := newWorkspace(t)
		for range 3 {
			if _, _, err := execute(t, ws.args("--save")...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		stdout, _, err := execute(t, "history", "-c", ws.config,
			"--history-dir", ws.path("history"), "--json", "--limit", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []database.RunRecord
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatalf("invalid JSON %q: %v", stdout, err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID <= runs[1].ID {
			t.Errorf("expected newest first, got ids %d, %d", runs[0].ID, runs[1].ID)
		}
		if runs[0].Summary.TotalAlerts != 1 || len(runs[0].Alerts) != 1 {
			t.Errorf("unexpected run %+v", runs[0])
		}
		if len(runs[0].InputDigest) != 64 {
			t.Errorf("expected input digest, got %q", runs[0].InputDigest)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		t.Parallel()

		ws := newWorkspace(t)
		_, _, err := execute(t, "history", "-c", ws.config, "--history-dir", ws.path("history"), "--limit", "-1")
		if err == nil {
			t.Error("expected error for negative limit")
		}
	})
}

// TestWriteHistoryTable tests table rendering.
func TestWriteHistoryTable(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := writeHistoryTable(&buf, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No runs recorded yet") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("rows", func(t *testing.T) {
		t.Parallel()

		runs := []database.RunRecord{{
			ID:          7,
			StartedAt:   time.Date(2024, 10, 10, 13, 55, 36, 0, time.UTC),
			LogPath:     "/var/log/nginx/access.log",
			InputDigest: "0123456789abcdef0123",
			Summary:     model.Summary{TotalRequests: 12, Total404URLs: 5, TotalAlerts: 3},
		}}

		var buf bytes.Buffer
		if err := writeHistoryTable(&buf, runs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"7", "access.log", "12", "0123456789ab"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output %q", want, output)
			}
		}
		if strings.Contains(output, "0123456789abc") {
			t.Error("expected digest to be shortened")
		}
	})
}

// TestShortDigest tests digest shortening.
func TestShortDigest(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                     "-",
		"abc":                  "abc",
		"0123456789abcdef0123": "0123456789ab",
	}
	for in, want := range tests {
		if got := shortDigest(in); got != want {
			t.Errorf("shortDigest(%q) = %q, want %q", in, got, want)
		}
	}
}
