package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/trackly/internal/config"
	"github.com/verte-zerg/trackly/internal/model"
)

func setupXDG(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseMistakeTags(t *testing.T) {
	got, err := parseMistakeTags([]string{"calc=2,concept=1", "CALC=1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[model.MistakeType]int{model.MistakeCalc: 3, model.MistakeConcept: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"calc", "guess=1", "calc=-1", "calc=x"} {
		if _, err := parseMistakeTags([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseBreakdown(t *testing.T) {
	got, err := parseBreakdown(" 20, 5 ,5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Correct != 20 || got.Incorrect != 5 || got.Unattempted != 5 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
	for _, bad := range []string{"", "1,2", "1,2,3,4", "1,-2,3", "a,b,c"} {
		if _, err := parseBreakdown(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must decode: %v", err)
	}
	if diff := cmp.Diff(config.FileConfig{}, cfg); diff != "" {
		t.Fatalf("commented template must set nothing (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure existing config: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "debug") {
		t.Fatalf("existing config must not be overwritten")
	}
}

func TestStatsConfigFromFlags(t *testing.T) {
	var subject, since string
	var window int
	cmd := &cobra.Command{Use: "x"}
	addFilterFlags(cmd, &subject, &since, &window)
	if err := cmd.Flags().Parse([]string{"--since", "2026-01-05", "--trend-window", "4"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileSubject := "maths"
	fileWindow := 7
	fileCfg := config.FileConfig{Dashboard: config.DashboardConfig{Subject: &fileSubject, TrendWindow: &fileWindow}}

	cfg, err := statsConfigFromFlags(cmd, fileCfg, subject, since, window)
	if err != nil {
		t.Fatalf("stats config: %v", err)
	}
	if cfg.Subject != model.Maths {
		t.Fatalf("expected subject from config, got %q", cfg.Subject)
	}
	if cfg.TrendWindow != 4 {
		t.Fatalf("flag must override config, got %d", cfg.TrendWindow)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2026-01-05" {
		t.Fatalf("unexpected since: %v", cfg.Since)
	}

	if _, err := statsConfigFromFlags(cmd, config.FileConfig{}, "", "", 0); err == nil {
		t.Fatalf("expected error for trend window 0")
	}
	if _, err := statsConfigFromFlags(cmd, config.FileConfig{}, "biology", "", 3); err == nil {
		t.Fatalf("expected error for unknown subject")
	}
}

func TestLogAndListSessions(t *testing.T) {
	setupXDG(t)
	out, err := runCLI(t, "log", "--subject", "chem", "--topic", "Mole Concept", "--attempted", "10", "--correct", "8", "--mistake", "calc=2")
	if err != nil {
		t.Fatalf("log: %v\n%s", err, out)
	}
	if !strings.Contains(out, "8/10 correct (80%)") {
		t.Fatalf("unexpected log output: %q", out)
	}

	if _, err := runCLI(t, "log", "--subject", "chem", "--topic", "Mole Concept", "--attempted", "10", "--correct", "8", "--mistake", "calc=1"); err == nil {
		t.Fatalf("expected unbalanced tags to be rejected")
	}
	if _, err := runCLI(t, "log", "--topic", "Optics", "--attempted", "5", "--correct", "5", "--mistake", "calc=1"); err == nil {
		t.Fatalf("expected tags without incorrect answers to be rejected")
	}

	out, err = runCLI(t, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if strings.Count(out, "Mole Concept") != 1 || !strings.Contains(out, "calc=2") {
		t.Fatalf("unexpected sessions output:\n%s", out)
	}
}

func TestQuickLogAndGoals(t *testing.T) {
	setupXDG(t)
	out, err := runCLI(t, "quick", "physics", "12")
	if err != nil {
		t.Fatalf("quick: %v", err)
	}
	if !strings.Contains(out, "Physics today: 12 questions") {
		t.Fatalf("unexpected quick output: %q", out)
	}
	out, err = runCLI(t, "quick", "--", "physics", "-20")
	if err != nil {
		t.Fatalf("quick undo: %v", err)
	}
	if !strings.Contains(out, "Physics today: 0 questions") {
		t.Fatalf("quick log must floor at zero: %q", out)
	}

	out, err = runCLI(t, "quick")
	if err != nil {
		t.Fatalf("quick history: %v", err)
	}
	if !strings.Contains(out, "Phy 0  Chem 0  Math 0") {
		t.Fatalf("unexpected history:\n%s", out)
	}
	if _, err := runCLI(t, "quick", "physics"); err == nil {
		t.Fatalf("expected error for a single argument")
	}

	out, err = runCLI(t, "goals", "--maths", "50")
	if err != nil {
		t.Fatalf("goals: %v", err)
	}
	if !strings.Contains(out, "0/50") || !strings.Contains(out, "0/30") {
		t.Fatalf("unexpected goals output:\n%s", out)
	}
}

func TestTargetLifecycle(t *testing.T) {
	setupXDG(t)
	out, err := runCLI(t, "target", "add", "--date", "2026-03-01", "--test", "Full", "mock")
	if err != nil {
		t.Fatalf("target add: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 {
		t.Fatalf("unexpected add output: %q", out)
	}
	id := fields[2]

	if _, err := runCLI(t, "target", "done", id); err != nil {
		t.Fatalf("target done: %v", err)
	}
	out, err = runCLI(t, "target", "list", "--date", "2026-03-01")
	if err != nil {
		t.Fatalf("target list: %v", err)
	}
	if !strings.Contains(out, "[x] Full mock (test)") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
	if _, err := runCLI(t, "target", "rm", id); err != nil {
		t.Fatalf("target rm: %v", err)
	}
	if _, err := runCLI(t, "target", "rm", id); err == nil {
		t.Fatalf("expected not found on second delete")
	}
}

func TestTestAddEditList(t *testing.T) {
	setupXDG(t)
	out, err := runCLI(t, "test", "add", "--name", "Mock 1", "--date", "2026-01-10", "--marks", "90",
		"--physics", "20,5,5", "--physics-mistakes", "concept=3,calc=2")
	if err != nil {
		t.Fatalf("test add: %v\n%s", err, out)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 {
		t.Fatalf("unexpected add output: %q", out)
	}
	id := fields[2]

	if _, err := runCLI(t, "test", "add", "--name", "Mock 2", "--chemistry", "10,2,0", "--chemistry-mistakes", "calc=1"); err == nil {
		t.Fatalf("expected unbalanced test tags to be rejected")
	}
	if _, err := runCLI(t, "test", "add", "--name", "Mock 3", "--maths", "10,2,0"); err == nil {
		t.Fatalf("expected untagged incorrect answers to be rejected")
	}
	if _, err := runCLI(t, "test", "add", "--name", "Mock 4", "--physics", "5,0,0", "--physics-mistakes", "calc=3"); err == nil {
		t.Fatalf("expected tags without incorrect answers to be rejected")
	}

	if _, err := runCLI(t, "test", "edit", id, "--total-questions", "90", "--temperament", "anxious"); err != nil {
		t.Fatalf("test edit: %v", err)
	}
	out, err = runCLI(t, "test", "list")
	if err != nil {
		t.Fatalf("test list: %v", err)
	}
	if !strings.Contains(out, "Mock 1") || !strings.Contains(out, "anxious") || !strings.Contains(out, "90/120") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
	if strings.Contains(out, "Mock 2") || strings.Contains(out, "Mock 3") || strings.Contains(out, "Mock 4") {
		t.Fatalf("rejected test must not be stored:\n%s", out)
	}
}

func TestSettingsAndReport(t *testing.T) {
	setupXDG(t)
	out, err := runCLI(t, "settings", "--focus", "50", "--theme", "dark")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if !strings.Contains(out, "theme: dark") || !strings.Contains(out, "focus 50 min, short break 5 min") {
		t.Fatalf("unexpected settings output:\n%s", out)
	}
	if _, err := runCLI(t, "settings", "--long-break", "0"); err == nil {
		t.Fatalf("expected error for zero minutes")
	}

	if _, err := runCLI(t, "log", "--subject", "physics", "--topic", "Optics", "--attempted", "4", "--correct", "4"); err != nil {
		t.Fatalf("log: %v", err)
	}
	out, err = runCLI(t, "report", "--subject", "physics")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"Subjects", "Topics: Physics", "Optics", "Practice mistakes", "No tests recorded."} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestSuggestRespectsSubject(t *testing.T) {
	setupXDG(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "trackly", "syllabus")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "maths.txt"), []byte("Limits\nVectors\n"), 0o644); err != nil {
		t.Fatalf("write syllabus: %v", err)
	}
	out, err := runCLI(t, "suggest", "--subject", "maths", "--count", "5")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected both syllabus topics, got:\n%s", out)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "Maths") {
			t.Fatalf("unexpected suggestion %q", line)
		}
	}
}

func TestCoachRequiresAPIKey(t *testing.T) {
	setupXDG(t)
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := runCLI(t, "coach"); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
