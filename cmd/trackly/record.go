package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
	"github.com/verte-zerg/trackly/internal/tui"
	"github.com/verte-zerg/trackly/internal/wizard"
)

var (
	logSubject   string
	logTopic     string
	logAttempted int
	logCorrect   int
	logMistakes  []string

	sessionsLimit int

	quickPruneBefore string

	goalsPhysics   int
	goalsChemistry int
	goalsMaths     int

	settingsTheme      string
	settingsPro        bool
	settingsFocus      int
	settingsShortBreak int
	settingsLongBreak  int
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a practice session",
		Long: "Log a practice session. Without --topic the interactive wizard opens;\n" +
			"with --topic the session is saved directly from flags.",
		Args: cobra.NoArgs,
		RunE: runLogCmd,
	}
	cmd.Flags().StringVar(&logSubject, "subject", string(model.Physics), "subject (Physics, Chemistry, Maths)")
	cmd.Flags().StringVar(&logTopic, "topic", "", "topic practiced")
	cmd.Flags().IntVar(&logAttempted, "attempted", 0, "questions attempted")
	cmd.Flags().IntVar(&logCorrect, "correct", 0, "questions answered correctly")
	cmd.Flags().StringArrayVar(&logMistakes, "mistake", nil, "mistake tag as type=n (repeatable)")
	return cmd
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	subject, err := model.ParseSubject(logSubject)
	if err != nil {
		return fmt.Errorf("invalid --subject value: %w", err)
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if logTopic == "" {
			return runLogWizard(ctx, a, subject)
		}
		flow := wizard.New()
		flow.Subject = subject
		flow.Topic = logTopic
		flow.Attempted = logAttempted
		flow.Correct = logCorrect
		if err := flow.Next(); err != nil {
			return err
		}
		tags, err := parseMistakeTags(logMistakes)
		if err != nil {
			return err
		}
		if flow.Incorrect() == 0 && len(tags) > 0 {
			return fmt.Errorf("--mistake given but every answer was correct")
		}
		for t, n := range tags {
			flow.SetCount(t, n)
		}
		session, err := flow.Session()
		if err != nil {
			if errors.Is(err, wizard.ErrUnbalanced) {
				return fmt.Errorf("tag every incorrect answer with --mistake (%d of %d tagged)", flow.Tagged(), flow.Incorrect())
			}
			return err
		}
		saved, err := a.tracker.AddSession(ctx, session)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return printf(cmd, "Saved %s session %s: %d/%d correct (%d%%)\n",
			saved.Subject, saved.ID, logCorrect, logAttempted, stats.AccuracyPercent(float64(logAttempted), float64(logCorrect)))
	})
}

func runLogWizard(ctx context.Context, a *app, subject model.Subject) error {
	topics, err := a.topics()
	if err != nil {
		return err
	}
	m := tui.NewModel(a.tracker, a.log, topics, subject)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if n := m.Saved(); n > 0 {
		logErrf("Saved %d session(s).\n", n)
	}
	return nil
}

// parseMistakeTags reads type=n pairs, summing repeated types.
func parseMistakeTags(values []string) (map[model.MistakeType]int, error) {
	out := map[model.MistakeType]int{}
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key, value, ok := strings.Cut(part, "=")
			if !ok {
				return nil, fmt.Errorf("invalid mistake %q (use type=n)", part)
			}
			t, err := model.ParseMistakeType(key)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid mistake count %q for %s", value, t)
			}
			out[t] += n
		}
	}
	return out, nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List logged sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
	cmd.Flags().IntVar(&sessionsLimit, "last", 20, "show the last N sessions (0 for all)")
	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.tracker.DeleteSession(ctx, args[0]); err != nil {
					return err
				}
				return printf(cmd, "Deleted session %s\n", args[0])
			})
		},
	})
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		sessions := a.tracker.Sessions()
		if sessionsLimit > 0 && len(sessions) > sessionsLimit {
			sessions = sessions[len(sessions)-sessionsLimit:]
		}
		if len(sessions) == 0 {
			return printf(cmd, "No sessions logged.\n")
		}
		for _, s := range sessions {
			line := fmt.Sprintf("%s  %s  %-4s  %-28s %3.0f/%-3.0f %3d%%",
				s.ID, stats.SessionDateKey(s), s.Subject.Short(), s.Topic,
				s.Correct.Float(), s.Attempted.Float(), stats.AccuracyPercent(s.Attempted.Float(), s.Correct.Float()))
			if tags := formatMistakes(s.Mistakes); tags != "" {
				line += "  " + tags
			}
			if err := printf(cmd, "%s\n", line); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatMistakes(m model.Mistakes) string {
	parts := make([]string, 0, len(m))
	for _, t := range model.MistakeTypes() {
		if n := m[t].Float(); n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%g", t, n))
		}
	}
	return strings.Join(parts, ",")
}

func newQuickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick SUBJECT N",
		Short: "Add N questions to today's quick-log counter",
		Long: "Add N questions to today's quick-log counter. Undo with a negative N after --,\n" +
			"e.g. trackly quick -- physics -5. Without arguments, lists past days.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected SUBJECT N or no arguments")
			}
			return nil
		},
		RunE: runQuickCmd,
	}
	cmd.Flags().StringVar(&quickPruneBefore, "prune-before", "", "delete quick-log days before this date (YYYY-MM-DD)")
	return cmd
}

func runQuickCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if quickPruneBefore != "" {
				removed, err := a.tracker.PruneQuickLogs(ctx, quickPruneBefore)
				if err != nil {
					return err
				}
				return printf(cmd, "Removed %d day(s)\n", removed)
			}
			return printQuickHistory(ctx, cmd, a)
		})
	}
	subject, err := model.ParseSubject(args[0])
	if err != nil {
		return err
	}
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", args[1], err)
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		daily, err := a.tracker.QuickLog(ctx, subject, delta)
		if err != nil {
			return fmt.Errorf("failed to update quick log: %w", err)
		}
		return printf(cmd, "%s today: %g questions\n", subject, daily[subject].Float())
	})
}

func printQuickHistory(ctx context.Context, cmd *cobra.Command, a *app) error {
	history, err := a.tracker.QuickHistory(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return printf(cmd, "No quick logs.\n")
	}
	dates := make([]string, 0, len(history))
	for date := range history {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		parts := make([]string, 0, len(model.Subjects()))
		for _, subject := range model.Subjects() {
			parts = append(parts, fmt.Sprintf("%s %g", subject.Short(), history[date][subject].Float()))
		}
		if err := printf(cmd, "%s  %s\n", date, strings.Join(parts, "  ")); err != nil {
			return err
		}
	}
	return nil
}

func newGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show or set daily question goals",
		Args:  cobra.NoArgs,
		RunE:  runGoalsCmd,
	}
	cmd.Flags().IntVar(&goalsPhysics, "physics", 0, "daily Physics goal")
	cmd.Flags().IntVar(&goalsChemistry, "chemistry", 0, "daily Chemistry goal")
	cmd.Flags().IntVar(&goalsMaths, "maths", 0, "daily Maths goal")
	return cmd
}

func runGoalsCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		snap := a.tracker.Snapshot(ctx)
		goals := snap.Goals
		flags := map[model.Subject]struct {
			name  string
			value int
		}{
			model.Physics:   {"physics", goalsPhysics},
			model.Chemistry: {"chemistry", goalsChemistry},
			model.Maths:     {"maths", goalsMaths},
		}
		changed := false
		for subject, f := range flags {
			if cmd.Flags().Changed(f.name) {
				goals[subject] = model.Num(f.value)
				changed = true
			}
		}
		if changed {
			if err := a.tracker.SetGoals(ctx, goals); err != nil {
				return fmt.Errorf("failed to save goals: %w", err)
			}
			snap = a.tracker.Snapshot(ctx)
		}
		r := stats.BuildReport(snap, nil, model.StatsConfig{}, a.tracker.Now())
		for _, g := range r.Goals {
			if err := printf(cmd, "%-9s %s %g/%g\n", g.Subject, stats.Bar(g.Scale, 20), g.Done, g.Goal); err != nil {
				return err
			}
		}
		return nil
	})
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE:  runSettingsCmd,
	}
	cmd.Flags().StringVar(&settingsTheme, "theme", "", "theme id")
	cmd.Flags().BoolVar(&settingsPro, "pro", false, "pro tier flag")
	cmd.Flags().IntVar(&settingsFocus, "focus", defaultFocusMinutes, "focus minutes")
	cmd.Flags().IntVar(&settingsShortBreak, "short-break", defaultShortBreakMinutes, "short break minutes")
	cmd.Flags().IntVar(&settingsLongBreak, "long-break", defaultLongBreakMinutes, "long break minutes")
	return cmd
}

func runSettingsCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		s := a.tracker.Settings()
		changed := false
		if cmd.Flags().Changed("theme") {
			s.Theme = settingsTheme
			changed = true
		}
		if cmd.Flags().Changed("pro") {
			s.Pro = settingsPro
			changed = true
		}
		minutes := []struct {
			name   string
			value  int
			target *model.Num
		}{
			{"focus", settingsFocus, &s.Timer.FocusMinutes},
			{"short-break", settingsShortBreak, &s.Timer.ShortBreakMinutes},
			{"long-break", settingsLongBreak, &s.Timer.LongBreakMinutes},
		}
		for _, m := range minutes {
			if !cmd.Flags().Changed(m.name) {
				continue
			}
			if m.value <= 0 {
				return fmt.Errorf("--%s must be > 0", m.name)
			}
			*m.target = model.Num(m.value)
			changed = true
		}
		if changed {
			if err := a.tracker.SetSettings(ctx, s); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
		}
		theme := s.Theme
		if theme == "" {
			theme = "default"
		}
		return printf(cmd, "theme: %s\npro: %t\ntimer: focus %g min, short break %g min, long break %g min\n",
			theme, s.Pro, s.Timer.FocusMinutes.Float(), s.Timer.ShortBreakMinutes.Float(), s.Timer.LongBreakMinutes.Float())
	})
}
