package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestParseButtonLine(t *testing.T) {
	tests := []struct {
		line     string
		pin      int
		asserted bool
		wantErr  bool
	}{
		{"press 0", 0, true, false},
		{"release 3", 3, false, false},
		{"  press   2 ", 2, true, false},
		{"press 4", 0, false, true},
		{"press x", 0, false, true},
		{"hold 1", 0, false, true},
		{"press", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseButtonLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Pin != tt.pin || got.Asserted != tt.asserted {
				t.Errorf("expected pin %d asserted %v, got %+v", tt.pin, tt.asserted, got)
			}
		})
	}
}

func TestRunStepped(t *testing.T) {
	dir := t.TempDir()
	out := execute(t, "run", "--ticks", "250", "--log-level", "error", "--snapshot-dir", dir, "--snapshot-format", "json")

	// heartbeat red3 and the first user app count on red3
	if !strings.Contains(out, "lit: red3") {
		t.Errorf("expected red3 lit after 250 ticks, got %q", out)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one snapshot, got %v (%v)", files, err)
	}

	out = execute(t, "inspect", files[0], "--log-level", "error")
	if !strings.Contains(out, "tick: 250") || !strings.Contains(out, "name: heartbeat") {
		t.Errorf("unexpected snapshot:\n%s", out)
	}
	runOpts.snapshotDir = ""
}

func TestGraph(t *testing.T) {
	out := execute(t, "graph", "--ticks", "10", "--log-level", "error")
	if !strings.HasPrefix(out, "digraph Superloop") {
		t.Errorf("expected DOT output, got %q", out)
	}
	if !strings.Contains(out, `"heartbeat.idle"`) {
		t.Errorf("heartbeat missing from graph:\n%s", out)
	}
}

func TestRunWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	board := `
board: ascii
apps:
  heartbeat:
    led: red
  holdled:
    led: white
  userapp:
    enabled: false
  boardtest:
    enabled: true
`
	if err := os.WriteFile(path, []byte(board), 0o644); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "run", "--config", path, "--ticks", "10", "--log-level", "error")
	if !strings.Contains(out, "Board test task started") {
		t.Errorf("expected board test console output, got %q", out)
	}
	rootOpts.config = ""
}
