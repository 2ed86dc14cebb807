package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/trackly/internal/coach"
	"github.com/verte-zerg/trackly/internal/config"
	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
	"github.com/verte-zerg/trackly/internal/suggest"
	"github.com/verte-zerg/trackly/internal/timer"
	"github.com/verte-zerg/trackly/internal/timerui"
	"github.com/verte-zerg/trackly/internal/tracker"
)

const (
	defaultSuggestCount = 3
	coachTimeout        = 90 * time.Second
	reportPlotHeight    = 8
	reportBarWidth      = 24
)

var (
	timerFocus      int
	timerShortBreak int
	timerLongBreak  int
	timerFresh      bool

	suggestSubject string
	suggestCount   int

	coachModel string

	reportSubject     string
	reportSince       string
	reportTrendWindow int
)

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Run the focus timer",
		Args:  cobra.NoArgs,
		RunE:  runTimerCmd,
	}
	cmd.Flags().IntVar(&timerFocus, "focus", 0, "focus minutes (default from settings)")
	cmd.Flags().IntVar(&timerShortBreak, "short-break", 0, "short break minutes (default from settings)")
	cmd.Flags().IntVar(&timerLongBreak, "long-break", 0, "long break minutes (default from settings)")
	cmd.Flags().BoolVar(&timerFresh, "fresh", false, "discard saved timer state")
	return cmd
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		prefs, err := timerPrefs(cmd, a.cfg, a.tracker.Settings().Timer)
		if err != nil {
			return err
		}
		var saved timer.State
		if !timerFresh {
			a.tracker.Restore(ctx, tracker.KeyTimerState, &saved)
		}
		t := timer.Restore(prefs, saved)
		program := tea.NewProgram(timerui.NewModel(t, a.tracker, a.log), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run timer: %w", err)
		}
		return nil
	})
}

// timerPrefs layers flags over [timer] config over stored settings.
func timerPrefs(cmd *cobra.Command, fileCfg config.FileConfig, stored model.TimerPrefs) (model.TimerPrefs, error) {
	focus := stored.FocusMinutes.Int()
	short := stored.ShortBreakMinutes.Int()
	long := stored.LongBreakMinutes.Int()
	if !cmd.Flags().Changed("focus") && fileCfg.Timer.Focus == nil {
		timerFocus = focus
	}
	if !cmd.Flags().Changed("short-break") && fileCfg.Timer.ShortBreak == nil {
		timerShortBreak = short
	}
	if !cmd.Flags().Changed("long-break") && fileCfg.Timer.LongBreak == nil {
		timerLongBreak = long
	}
	applyIntConfig(cmd, "focus", &timerFocus, fileCfg.Timer.Focus)
	applyIntConfig(cmd, "short-break", &timerShortBreak, fileCfg.Timer.ShortBreak)
	applyIntConfig(cmd, "long-break", &timerLongBreak, fileCfg.Timer.LongBreak)
	for name, v := range map[string]int{"focus": timerFocus, "short-break": timerShortBreak, "long-break": timerLongBreak} {
		if v <= 0 {
			return model.TimerPrefs{}, fmt.Errorf("--%s must be > 0", name)
		}
	}
	return model.TimerPrefs{
		FocusMinutes:      model.Num(timerFocus),
		ShortBreakMinutes: model.Num(timerShortBreak),
		LongBreakMinutes:  model.Num(timerLongBreak),
	}, nil
}

func newSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest topics for the next session, favouring weak ones",
		Args:  cobra.NoArgs,
		RunE:  runSuggestCmd,
	}
	cmd.Flags().StringVar(&suggestSubject, "subject", "", "limit to one subject")
	cmd.Flags().IntVar(&suggestCount, "count", defaultSuggestCount, "number of topics")
	return cmd
}

func runSuggestCmd(cmd *cobra.Command, _ []string) error {
	if suggestCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	var cfg model.StatsConfig
	if suggestSubject != "" {
		subject, err := model.ParseSubject(suggestSubject)
		if err != nil {
			return fmt.Errorf("invalid --subject value: %w", err)
		}
		cfg.Subject = subject
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		topics, err := a.topics()
		if err != nil {
			return err
		}
		r := stats.BuildReport(a.tracker.Snapshot(ctx), topics, cfg, a.tracker.Now())
		var cells []stats.TopicCell
		for _, subject := range model.Subjects() {
			cells = append(cells, r.Heatmap[subject]...)
		}
		picks := suggest.New().Pick(cells, suggestCount)
		if len(picks) == 0 {
			return printf(cmd, "No topics to suggest.\n")
		}
		for _, c := range picks {
			detail := c.Bucket.String()
			if c.Attempted > 0 {
				detail = fmt.Sprintf("%s, %d%% of %g", detail, stats.AccuracyPercent(c.Attempted, c.Correct), c.Attempted)
			}
			if err := printf(cmd, "%-9s %s (%s)\n", c.Subject, c.Topic, detail); err != nil {
				return err
			}
		}
		return nil
	})
}

func newCoachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Ask the AI coach for a diagnosis (needs GEMINI_API_KEY)",
		Args:  cobra.NoArgs,
		RunE:  runCoachCmd,
	}
	cmd.Flags().StringVar(&coachModel, "model", coach.DefaultModel, "Gemini model name")
	return cmd
}

func runCoachCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		applyStringConfig(cmd, "model", &coachModel, a.cfg.Coach.Model)
		ctx, cancel := context.WithTimeout(ctx, coachTimeout)
		defer cancel()

		gen, err := coach.NewGemini(ctx, os.Getenv("GEMINI_API_KEY"), coachModel)
		if err != nil {
			return err
		}
		topics, err := a.topics()
		if err != nil {
			return err
		}
		r := stats.BuildReport(a.tracker.Snapshot(ctx), topics, model.StatsConfig{}, a.tracker.Now())
		logErrln("Asking the coach...")
		advice, err := coach.New(gen, a.log.Named("coach")).Advise(ctx, r)
		if err != nil {
			a.log.Error("coach failed", zap.Error(err))
			return err
		}
		if err := printf(cmd, "%s\n\n%s\n\nTemperament: %s\n\nAction plan:\n", advice.BottleneckTitle, advice.Analysis, advice.Temperament); err != nil {
			return err
		}
		for i, step := range advice.ActionPlan {
			if err := printf(cmd, "%d. %s\n", i+1, step); err != nil {
				return err
			}
		}
		return nil
	})
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard as plain text",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addFilterFlags(cmd, &reportSubject, &reportSince, &reportTrendWindow)
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		cfg, err := statsConfigFromFlags(cmd, a.cfg, reportSubject, reportSince, reportTrendWindow)
		if err != nil {
			return err
		}
		topics, err := a.topics()
		if err != nil {
			return err
		}
		r := stats.BuildReport(a.tracker.Snapshot(ctx), topics, cfg, a.tracker.Now())
		w := cmd.OutOrStdout()
		if err := stats.RenderSummary(w, r); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderHeatmap(w, r); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderMistakes(w, "Practice mistakes", r.Mistakes, reportBarWidth); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderTrend(w, r.Trend, 0, reportPlotHeight, false); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}
