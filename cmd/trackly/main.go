// Package main provides the CLI entrypoint for trackly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/trackly/internal/coach"
	"github.com/verte-zerg/trackly/internal/config"
	"github.com/verte-zerg/trackly/internal/logging"
	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
	"github.com/verte-zerg/trackly/internal/statsui"
	"github.com/verte-zerg/trackly/internal/store"
	"github.com/verte-zerg/trackly/internal/syllabus"
	"github.com/verte-zerg/trackly/internal/timer"
	"github.com/verte-zerg/trackly/internal/tracker"
)

const (
	defaultFocusMinutes      = 25
	defaultShortBreakMinutes = 5
	defaultLongBreakMinutes  = 15
)

var (
	dashSubject     string
	dashSince       string
	dashTrendWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trackly",
		Short:         "Study tracker for Physics, Chemistry and Maths",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	addFilterFlags(rootCmd, &dashSubject, &dashSince, &dashTrendWindow)

	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newTargetCmd())
	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newQuickCmd())
	rootCmd.AddCommand(newGoalsCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newTimerCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newCoachCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addFilterFlags(cmd *cobra.Command, subject, since *string, window *int) {
	cmd.Flags().StringVar(subject, "subject", "", "subject filter (Physics, Chemistry, Maths)")
	cmd.Flags().StringVar(since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(window, "trend-window", stats.MaxTrendTests, fmt.Sprintf("tests in the trend view (1-%d)", stats.MaxTrendTests))
}

// app bundles what every command needs: config, storage, tracker and logger.
type app struct {
	cfg      config.FileConfig
	store    *store.Store
	tracker  *tracker.Tracker
	log      *zap.Logger
	closeLog func() error
}

func openApp(ctx context.Context) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logPath := config.DefaultLogPath()
	if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
		logPath = *fileCfg.Log.File
	}
	level := ""
	if fileCfg.Log.Level != nil {
		level = *fileCfg.Log.Level
	}
	log, closeLog, err := logging.New(logging.Options{Path: logPath, Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		if cerr := closeLog(); cerr != nil {
			_ = cerr
		}
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	return &app{
		cfg:      fileCfg,
		store:    st,
		tracker:  tracker.Load(ctx, st, log),
		log:      log,
		closeLog: closeLog,
	}, nil
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	if cerr := a.closeLog(); cerr != nil {
		logErrf("%v\n", cerr)
	}
}

func (a *app) topics() (map[model.Subject][]string, error) {
	dir := config.DefaultSyllabusDir()
	if a.cfg.Syllabus.Dir != nil && *a.cfg.Syllabus.Dir != "" {
		dir = *a.cfg.Syllabus.Dir
	}
	topics, err := syllabus.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load syllabus: %w", err)
	}
	return topics, nil
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		cfg, err := statsConfigFromFlags(cmd, a.cfg, dashSubject, dashSince, dashTrendWindow)
		if err != nil {
			return err
		}
		topics, err := a.topics()
		if err != nil {
			return err
		}
		program := tea.NewProgram(statsui.NewModel(a.tracker, topics, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run dashboard: %w", err)
		}
		return nil
	})
}

// statsConfigFromFlags merges dashboard flags with the [dashboard] config section.
func statsConfigFromFlags(cmd *cobra.Command, fileCfg config.FileConfig, subject, since string, window int) (model.StatsConfig, error) {
	applyStringConfig(cmd, "subject", &subject, fileCfg.Dashboard.Subject)
	applyIntConfig(cmd, "trend-window", &window, fileCfg.Dashboard.TrendWindow)

	var cfg model.StatsConfig
	if strings.TrimSpace(subject) != "" {
		parsed, err := model.ParseSubject(subject)
		if err != nil {
			return cfg, fmt.Errorf("invalid --subject value: %w", err)
		}
		cfg.Subject = parsed
	}
	if since != "" {
		parsed, err := time.ParseInLocation(stats.DateLayout, since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if window < 1 || window > stats.MaxTrendTests {
		return cfg, fmt.Errorf("--trend-window must be between 1 and %d", stats.MaxTrendTests)
	}
	cfg.TrendWindow = window
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless a config exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# trackly configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# subject = "Physics"     # Default subject filter (empty shows all)
# trend-window = %d       # Tests in the trend view (1-%d)

[timer]
# focus = %d              # Focus block length in minutes
# short-break = %d         # Short break in minutes
# long-break = %d         # Long break (every %d focus blocks) in minutes

[coach]
# model = %q

[log]
# level = %q           # debug, info, warn or error
# file = %q

[syllabus]
# dir = %q   # Holds physics.txt, chemistry.txt, maths.txt
`,
		stats.MaxTrendTests,
		stats.MaxTrendTests,
		defaultFocusMinutes,
		defaultShortBreakMinutes,
		defaultLongBreakMinutes,
		timer.LongBreakEvery,
		coach.DefaultModel,
		logging.DefaultLevel,
		config.DefaultLogPath(),
		config.DefaultSyllabusDir(),
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

// printf writes command output, wrapping write failures.
func printf(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
