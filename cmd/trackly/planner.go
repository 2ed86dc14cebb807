package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
	"github.com/verte-zerg/trackly/internal/wizard"
)

var (
	targetDate string
	targetTest bool
	targetAll  bool

	testName           string
	testDate           string
	testMarks          float64
	testTotal          float64
	testTemperament    string
	testTotalQuestions int
)

func newTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage planner targets",
	}

	add := &cobra.Command{
		Use:   "add TEXT",
		Short: "Schedule a task or test on a date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := model.TargetTask
			if targetTest {
				typ = model.TargetTest
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				date := targetDate
				if date == "" {
					date = stats.LocalDateKey(a.tracker.Now())
				}
				target, err := a.tracker.AddTarget(ctx, date, strings.Join(args, " "), typ)
				if err != nil {
					return fmt.Errorf("failed to add target: %w", err)
				}
				return printf(cmd, "Added %s %s on %s\n", target.Type, target.ID, target.Date)
			})
		},
	}
	add.Flags().StringVar(&targetDate, "date", "", "date (YYYY-MM-DD, default today)")
	add.Flags().BoolVar(&targetTest, "test", false, "mark the target as a scheduled test")

	list := &cobra.Command{
		Use:   "list",
		Short: "List targets by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				return printTargets(cmd, a, targetDate, targetAll)
			})
		},
	}
	list.Flags().StringVar(&targetDate, "date", "", "only this date (YYYY-MM-DD)")
	list.Flags().BoolVar(&targetAll, "all", false, "include past dates")

	done := &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a target's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				target, err := a.tracker.ToggleTarget(ctx, args[0])
				if err != nil {
					return err
				}
				state := "pending"
				if target.Completed {
					state = "done"
				}
				return printf(cmd, "%s is %s\n", target.Text, state)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.tracker.DeleteTarget(ctx, args[0]); err != nil {
					return err
				}
				return printf(cmd, "Deleted target %s\n", args[0])
			})
		},
	}

	cmd.AddCommand(add, list, done, rm)
	return cmd
}

func printTargets(cmd *cobra.Command, a *app, date string, all bool) error {
	today := stats.LocalDateKey(a.tracker.Now())
	var agenda []stats.DayAgenda
	if date != "" {
		agenda = stats.BuildAgenda(a.tracker.TargetsOn(date))
	} else {
		for _, day := range stats.BuildAgenda(a.tracker.Targets()) {
			if all || day.Date >= today {
				agenda = append(agenda, day)
			}
		}
	}
	if len(agenda) == 0 {
		return printf(cmd, "No targets.\n")
	}
	for _, day := range agenda {
		header := day.Date
		if day.Date == today {
			header += " (today)"
		}
		if err := printf(cmd, "%s\n", header); err != nil {
			return err
		}
		for _, t := range day.Targets {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			label := ""
			if t.Type == model.TargetTest {
				label = " (test)"
			}
			if err := printf(cmd, "  %s %s%s  %s\n", mark, t.Text, label, t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Manage mock test results",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a mock test",
		Args:  cobra.NoArgs,
		RunE:  runTestAddCmd,
	}
	addTestFlags(add)

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a recorded test",
		Args:  cobra.ExactArgs(1),
		RunE:  runTestEditCmd,
	}
	addTestFlags(edit)
	edit.Flags().IntVar(&testTotalQuestions, "total-questions", 0, "spread N questions evenly across subjects")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded tests, oldest first",
		Args:  cobra.NoArgs,
		RunE:  runTestListCmd,
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.tracker.DeleteTest(ctx, args[0]); err != nil {
					return err
				}
				return printf(cmd, "Deleted test %s\n", args[0])
			})
		},
	}

	cmd.AddCommand(add, edit, list, rm)
	return cmd
}

func addTestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&testName, "name", "", "test name")
	cmd.Flags().StringVar(&testDate, "date", "", "test date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&testMarks, "marks", 0, "marks scored")
	cmd.Flags().Float64Var(&testTotal, "total", 0, "maximum marks (default 4 per question)")
	cmd.Flags().StringVar(&testTemperament, "temperament", "", "calm, anxious, rushed, fatigued or confident")
	for _, subject := range model.Subjects() {
		name := strings.ToLower(string(subject))
		cmd.Flags().String(name, "", fmt.Sprintf("%s counts as correct,incorrect,unattempted", subject))
		cmd.Flags().String(name+"-mistakes", "", fmt.Sprintf("%s mistake tags as type=n,...", subject))
	}
}

func runTestAddCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		tr := model.TestResult{
			Name: testName,
			Date: testDate,
		}
		if tr.Date == "" {
			tr.Date = stats.LocalDateKey(a.tracker.Now())
		}
		temperament, err := model.ParseTemperament(testTemperament)
		if err != nil {
			return err
		}
		tr.Temperament = temperament
		tr.Breakdown = map[model.Subject]model.SubjectBreakdown{}
		if err := applyBreakdownFlags(cmd, tr.Breakdown, true); err != nil {
			return err
		}
		tr.Marks = model.Num(testMarks)
		tr.Total = model.Num(testTotal)
		if !cmd.Flags().Changed("total") {
			tr.Total = model.Num(questionCount(tr.Breakdown) * 4)
		}
		saved, err := a.tracker.AddTest(ctx, tr)
		if err != nil {
			return fmt.Errorf("failed to add test: %w", err)
		}
		return printf(cmd, "Saved test %s (%s): %.0f%%\n", saved.ID, saved.Name, stats.OverallPercent(saved))
	})
}

func runTestEditCmd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		tr, err := a.tracker.FindTest(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("name") {
			tr.Name = testName
		}
		if cmd.Flags().Changed("date") {
			tr.Date = testDate
		}
		if cmd.Flags().Changed("marks") {
			tr.Marks = model.Num(testMarks)
		}
		if cmd.Flags().Changed("total") {
			tr.Total = model.Num(testTotal)
		}
		if cmd.Flags().Changed("temperament") {
			temperament, err := model.ParseTemperament(testTemperament)
			if err != nil {
				return err
			}
			tr.Temperament = temperament
		}
		if tr.Breakdown == nil {
			tr.Breakdown = map[model.Subject]model.SubjectBreakdown{}
		}
		if cmd.Flags().Changed("total-questions") {
			if testTotalQuestions < 0 {
				return fmt.Errorf("--total-questions must be >= 0")
			}
			tr.Breakdown = stats.Reallocate(testTotalQuestions, tr.Breakdown)
		}
		if err := applyBreakdownFlags(cmd, tr.Breakdown, false); err != nil {
			return err
		}
		if err := a.tracker.UpdateTest(ctx, tr); err != nil {
			return fmt.Errorf("failed to update test: %w", err)
		}
		return printf(cmd, "Updated test %s\n", tr.ID)
	})
}

// applyBreakdownFlags copies per-subject counts and tags into breakdown.
// When strict is set, every subject's tags must add up to its incorrect count.
func applyBreakdownFlags(cmd *cobra.Command, breakdown map[model.Subject]model.SubjectBreakdown, strict bool) error {
	for _, subject := range model.Subjects() {
		name := strings.ToLower(string(subject))
		b := breakdown[subject]
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetString(name)
			parsed, err := parseBreakdown(value)
			if err != nil {
				return fmt.Errorf("invalid --%s value: %w", name, err)
			}
			parsed.Mistakes = b.Mistakes
			b = parsed
		}
		tagsChanged := cmd.Flags().Changed(name + "-mistakes")
		if tagsChanged || strict {
			flow := wizard.NewTagging(subject, b.Incorrect.Int())
			if tagsChanged {
				value, _ := cmd.Flags().GetString(name + "-mistakes")
				tags, err := parseMistakeTags([]string{value})
				if err != nil {
					return fmt.Errorf("invalid --%s-mistakes value: %w", name, err)
				}
				for t, n := range tags {
					flow.SetCount(t, n)
				}
			}
			if strict && !flow.CanSave() {
				return fmt.Errorf("%s: %d of %d incorrect answers tagged (use --%s-mistakes): %w",
					subject, flow.Tagged(), flow.Incorrect(), name, wizard.ErrUnbalanced)
			}
			b.Mistakes = flow.Mistakes()
		}
		breakdown[subject] = b
	}
	return nil
}

// parseBreakdown reads "correct,incorrect,unattempted".
func parseBreakdown(value string) (model.SubjectBreakdown, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return model.SubjectBreakdown{}, errors.New("expected correct,incorrect,unattempted")
	}
	counts := make([]float64, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return model.SubjectBreakdown{}, fmt.Errorf("count %q must be a non-negative integer", part)
		}
		counts[i] = float64(n)
	}
	return model.SubjectBreakdown{
		Correct:     model.Num(counts[0]),
		Incorrect:   model.Num(counts[1]),
		Unattempted: model.Num(counts[2]),
	}, nil
}

func questionCount(breakdown map[model.Subject]model.SubjectBreakdown) float64 {
	total := 0.0
	for _, b := range breakdown {
		total += b.Questions()
	}
	return total
}

func runTestListCmd(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		tests := stats.SortTestsByDate(a.tracker.Tests())
		if len(tests) == 0 {
			return printf(cmd, "No tests recorded.\n")
		}
		for _, t := range tests {
			parts := make([]string, 0, len(model.Subjects()))
			for _, subject := range model.Subjects() {
				score := stats.ScoreSubject(subject, t.Breakdown[subject])
				parts = append(parts, fmt.Sprintf("%s %.0f%%", subject.Short(), score.ScorePercent))
			}
			line := fmt.Sprintf("%s  %s  %-20s %g/%g (%.0f%%)  %s  %s",
				t.ID, t.Date, t.Name, t.Marks.Float(), t.Total.Float(), stats.OverallPercent(t), strings.Join(parts, "  "), t.Temperament)
			if err := printf(cmd, "%s\n", line); err != nil {
				return err
			}
		}
		return nil
	})
}
