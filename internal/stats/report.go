package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/trackly/internal/model"
)

// ActivityDays is the length of the activity strip.
const ActivityDays = 7

// GoalProgress compares today's questions with the daily goal.
type GoalProgress struct {
	Subject model.Subject
	Done    float64
	Goal    float64
	Scale   float64
}

// Report contains precomputed data for dashboard rendering.
type Report struct {
	Config   model.StatsConfig
	Today    string
	Sessions []model.Session
	Subjects []SubjectTotals
	Heatmap  map[model.Subject][]TopicCell
	Mistakes Distribution
	Trend    Trend
	Activity []DayCount
	Streak   int
	Goals    []GoalProgress
	Agenda   []DayAgenda
}

// DayAgenda lists targets scheduled on one date.
type DayAgenda struct {
	Date    string
	Targets []model.Target
}

// BuildReport filters the snapshot and derives every dashboard metric.
// Heatmap and goal progress always use all-time and today's data so the
// filters only narrow the session views.
func BuildReport(snap model.Snapshot, topics map[model.Subject][]string, cfg model.StatsConfig, now time.Time) Report {
	sessions := filterSessions(snap.Sessions, cfg)
	r := Report{
		Config:   cfg,
		Today:    LocalDateKey(now),
		Sessions: sessions,
		Subjects: AggregateAll(sessions),
		Heatmap:  map[model.Subject][]TopicCell{},
		Mistakes: MistakeDistribution(sessions),
		Trend:    TestTrend(snap.Tests, cfg.TrendWindow),
		Activity: DailyCounts(snap.Sessions, ActivityDays, now),
		Streak:   Streak(snap.Sessions, now),
		Agenda:   BuildAgenda(snap.Targets),
	}
	for _, subject := range r.subjectOrder() {
		r.Heatmap[subject] = TopicHeatmap(snap.Sessions, subject, topics[subject])
	}
	r.Goals = goalProgress(snap, r.Today)
	return r
}

func (r Report) subjectOrder() []model.Subject {
	if r.Config.Subject.Valid() {
		return []model.Subject{r.Config.Subject}
	}
	return model.Subjects()
}

func filterSessions(sessions []model.Session, cfg model.StatsConfig) []model.Session {
	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if cfg.Subject != "" && s.Subject != cfg.Subject {
			continue
		}
		if cfg.Since != nil && s.Timestamp.Time().Before(*cfg.Since) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// goalProgress counts today's logged sessions plus quick-log counters.
func goalProgress(snap model.Snapshot, today string) []GoalProgress {
	todays := SessionsOn(snap.Sessions, today)
	out := make([]GoalProgress, 0, len(model.Subjects()))
	for _, subject := range model.Subjects() {
		done := AggregateSubject(todays, subject).Attempted + snap.Today[subject].Float()
		goal := snap.Goals[subject].Float()
		out = append(out, GoalProgress{
			Subject: subject,
			Done:    done,
			Goal:    goal,
			Scale:   ProgressScale(done, goal),
		})
	}
	return out
}

// BuildAgenda groups targets by date, pending first within a day.
func BuildAgenda(targets []model.Target) []DayAgenda {
	byDate := map[string][]model.Target{}
	for _, t := range targets {
		key := LocalDateKey(ParseDateKey(t.Date))
		byDate[key] = append(byDate[key], t)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]DayAgenda, 0, len(dates))
	for _, d := range dates {
		items := byDate[d]
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Completed != items[j].Completed {
				return !items[i].Completed
			}
			return items[i].Timestamp < items[j].Timestamp
		})
		out = append(out, DayAgenda{Date: d, Targets: items})
	}
	return out
}
