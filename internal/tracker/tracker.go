// Package tracker keeps the in-memory record collections and persists each
// one to the key/value store after every mutation.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

// Storage keys.
const (
	KeySessions    = "trackly_sessions"
	KeyTests       = "trackly_tests"
	KeyTargets     = "trackly_targets"
	KeyGoals       = "trackly_goals"
	KeyTheme       = "trackly_theme"
	KeyPro         = "trackly_pro"
	KeyTimerPrefs  = "trackly_timer_prefs"
	KeyTimerState  = "trackly_timer_state"
	DailyKeyPrefix = "trackly_daily_"
)

const defaultDailyGoal = 30

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid wraps validation failures of new or edited records.
	ErrInvalid = errors.New("invalid record")
)

// KV is the persistence backend.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// State holds one field per persisted collection.
type State struct {
	Sessions []model.Session
	Tests    []model.TestResult
	Targets  []model.Target
	Goals    model.Goals
	Settings model.Settings
}

// Tracker owns State and writes through to KV.
type Tracker struct {
	kv    KV
	log   *zap.Logger
	now   func() time.Time
	newID func() string
	state State
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// DailyKey returns the quick-log key for a local date.
func DailyKey(date string) string {
	return DailyKeyPrefix + date
}

// DefaultTimerPrefs are used until the user saves their own.
func DefaultTimerPrefs() model.TimerPrefs {
	return model.TimerPrefs{FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15}
}

// Load reads every collection, falling back to defaults for missing or
// corrupt values.
func Load(ctx context.Context, kv KV, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{kv: kv, log: log, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(t)
	}

	t.state.Goals = model.Goals{}
	for _, s := range model.Subjects() {
		t.state.Goals[s] = defaultDailyGoal
	}
	t.state.Settings.Timer = DefaultTimerPrefs()

	t.Restore(ctx, KeySessions, &t.state.Sessions)
	t.Restore(ctx, KeyTests, &t.state.Tests)
	t.Restore(ctx, KeyTargets, &t.state.Targets)
	t.Restore(ctx, KeyGoals, &t.state.Goals)
	t.Restore(ctx, KeyTheme, &t.state.Settings.Theme)
	t.Restore(ctx, KeyPro, &t.state.Settings.Pro)
	t.Restore(ctx, KeyTimerPrefs, &t.state.Settings.Timer)
	return t
}

// Restore decodes key into dst. A missing, corrupt or null map value leaves
// dst untouched and reports false.
func (t *Tracker) Restore(ctx context.Context, key string, dst any) bool {
	raw, ok, err := t.kv.Get(ctx, key)
	if err != nil {
		t.log.Warn("failed to read key", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	tmp := reflect.New(reflect.TypeOf(dst).Elem())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		t.log.Warn("ignoring corrupt value", zap.String("key", key), zap.Error(err))
		return false
	}
	if v := tmp.Elem(); v.Kind() == reflect.Map && v.IsNil() {
		t.log.Warn("ignoring null value", zap.String("key", key))
		return false
	}
	reflect.ValueOf(dst).Elem().Set(tmp.Elem())
	return true
}

// Persist encodes v and stores it under key.
func (t *Tracker) Persist(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := t.kv.Put(ctx, key, raw); err != nil {
		t.log.Error("failed to persist", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	t.log.Debug("persisted", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

// Now returns the tracker clock's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Snapshot copies the current state plus today's quick-log counters.
func (t *Tracker) Snapshot(ctx context.Context) model.Snapshot {
	return model.Snapshot{
		Sessions: append([]model.Session(nil), t.state.Sessions...),
		Tests:    append([]model.TestResult(nil), t.state.Tests...),
		Targets:  append([]model.Target(nil), t.state.Targets...),
		Goals:    cloneCounts(t.state.Goals),
		Today:    t.DailyLog(ctx, stats.LocalDateKey(t.now())),
		Settings: t.state.Settings,
	}
}

// Sessions returns the session list.
func (t *Tracker) Sessions() []model.Session {
	return append([]model.Session(nil), t.state.Sessions...)
}

// Tests returns the test list.
func (t *Tracker) Tests() []model.TestResult {
	return append([]model.TestResult(nil), t.state.Tests...)
}

// Targets returns the target list.
func (t *Tracker) Targets() []model.Target {
	return append([]model.Target(nil), t.state.Targets...)
}

// Settings returns the current preferences.
func (t *Tracker) Settings() model.Settings {
	return t.state.Settings
}

// AddSession validates and appends a session, assigning id and timestamp.
func (t *Tracker) AddSession(ctx context.Context, s model.Session) (model.Session, error) {
	if err := ValidateSession(s); err != nil {
		return model.Session{}, err
	}
	s.Topic = strings.TrimSpace(s.Topic)
	if s.ID == "" {
		s.ID = t.newID()
	}
	if s.Timestamp == 0 {
		s.Timestamp = model.MillisOf(t.now())
	}
	s.Mistakes = s.Mistakes.Clone()
	t.state.Sessions = appendItem(t.state.Sessions, s)
	t.log.Info("session added", zap.String("id", s.ID), zap.String("subject", string(s.Subject)),
		zap.String("topic", s.Topic), zap.Float64("attempted", s.Attempted.Float()), zap.Float64("correct", s.Correct.Float()))
	return s, t.Persist(ctx, KeySessions, t.state.Sessions)
}

// DeleteSession removes a session by id.
func (t *Tracker) DeleteSession(ctx context.Context, id string) error {
	next, ok := removeByID(t.state.Sessions, id, sessionID)
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	t.state.Sessions = next
	t.log.Info("session deleted", zap.String("id", id))
	return t.Persist(ctx, KeySessions, t.state.Sessions)
}

// AddTarget schedules a task or test reminder on a date.
func (t *Tracker) AddTarget(ctx context.Context, date, text string, typ model.TargetType) (model.Target, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Target{}, fmt.Errorf("target text is empty: %w", ErrInvalid)
	}
	if _, err := time.Parse(stats.DateLayout, date); err != nil {
		return model.Target{}, fmt.Errorf("target date %q is not YYYY-MM-DD: %w", date, ErrInvalid)
	}
	if typ == "" {
		typ = model.TargetTask
	}
	if typ != model.TargetTask && typ != model.TargetTest {
		return model.Target{}, fmt.Errorf("target type %q: %w", typ, ErrInvalid)
	}
	target := model.Target{
		ID:        t.newID(),
		Date:      date,
		Text:      text,
		Timestamp: model.MillisOf(t.now()),
		Type:      typ,
	}
	t.state.Targets = appendItem(t.state.Targets, target)
	t.log.Info("target added", zap.String("id", target.ID), zap.String("date", date))
	return target, t.Persist(ctx, KeyTargets, t.state.Targets)
}

// ToggleTarget flips the completed flag.
func (t *Tracker) ToggleTarget(ctx context.Context, id string) (model.Target, error) {
	target, ok := findByID(t.state.Targets, id, targetID)
	if !ok {
		return model.Target{}, fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	target.Completed = !target.Completed
	t.state.Targets, _ = replaceByID(t.state.Targets, target, targetID)
	return target, t.Persist(ctx, KeyTargets, t.state.Targets)
}

// DeleteTarget removes a target by id.
func (t *Tracker) DeleteTarget(ctx context.Context, id string) error {
	next, ok := removeByID(t.state.Targets, id, targetID)
	if !ok {
		return fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	t.state.Targets = next
	return t.Persist(ctx, KeyTargets, t.state.Targets)
}

// TargetsOn returns targets scheduled on a date.
func (t *Tracker) TargetsOn(date string) []model.Target {
	var out []model.Target
	for _, target := range t.state.Targets {
		if target.Date == date {
			out = append(out, target)
		}
	}
	return out
}

// AddTest records a test result.
func (t *Tracker) AddTest(ctx context.Context, tr model.TestResult) (model.TestResult, error) {
	if err := ValidateTest(tr); err != nil {
		return model.TestResult{}, err
	}
	if tr.ID == "" {
		tr.ID = t.newID()
	}
	if tr.Timestamp == 0 {
		tr.Timestamp = model.MillisOf(t.now())
	}
	tr.Breakdown = normalizeBreakdown(tr.Breakdown)
	t.state.Tests = appendItem(t.state.Tests, tr)
	t.log.Info("test added", zap.String("id", tr.ID), zap.String("name", tr.Name), zap.String("date", tr.Date))
	return tr, t.Persist(ctx, KeyTests, t.state.Tests)
}

// UpdateTest replaces a test by id. Mistake tags are not reconciled with
// incorrect counts here.
func (t *Tracker) UpdateTest(ctx context.Context, tr model.TestResult) error {
	if err := ValidateTest(tr); err != nil {
		return err
	}
	tr.Breakdown = normalizeBreakdown(tr.Breakdown)
	next, ok := replaceByID(t.state.Tests, tr, testID)
	if !ok {
		return fmt.Errorf("test %s: %w", tr.ID, ErrNotFound)
	}
	t.state.Tests = next
	t.log.Info("test updated", zap.String("id", tr.ID))
	return t.Persist(ctx, KeyTests, t.state.Tests)
}

// FindTest looks up a test by id.
func (t *Tracker) FindTest(id string) (model.TestResult, error) {
	tr, ok := findByID(t.state.Tests, id, testID)
	if !ok {
		return model.TestResult{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	return tr, nil
}

// DeleteTest removes a test by id.
func (t *Tracker) DeleteTest(ctx context.Context, id string) error {
	next, ok := removeByID(t.state.Tests, id, testID)
	if !ok {
		return fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	t.state.Tests = next
	return t.Persist(ctx, KeyTests, t.state.Tests)
}

// SetGoals replaces the daily goals. Negative goals become 0.
func (t *Tracker) SetGoals(ctx context.Context, goals model.Goals) error {
	next := model.Goals{}
	for _, s := range model.Subjects() {
		v := goals[s].Float()
		if v < 0 {
			v = 0
		}
		next[s] = model.Num(v)
	}
	t.state.Goals = next
	return t.Persist(ctx, KeyGoals, t.state.Goals)
}

// SetSettings stores preferences, each under its own key.
func (t *Tracker) SetSettings(ctx context.Context, s model.Settings) error {
	t.state.Settings = s
	if err := t.Persist(ctx, KeyTheme, s.Theme); err != nil {
		return err
	}
	if err := t.Persist(ctx, KeyPro, s.Pro); err != nil {
		return err
	}
	return t.Persist(ctx, KeyTimerPrefs, s.Timer)
}

// DailyLog returns the quick-log counters for a date.
func (t *Tracker) DailyLog(ctx context.Context, date string) model.DailyLog {
	log := model.DailyLog{}
	t.Restore(ctx, DailyKey(date), &log)
	return log
}

// QuickLog adds delta questions to today's counter for a subject. The
// counter never drops below zero.
func (t *Tracker) QuickLog(ctx context.Context, subject model.Subject, delta float64) (model.DailyLog, error) {
	if !subject.Valid() {
		return nil, fmt.Errorf("subject %q: %w", subject, ErrInvalid)
	}
	date := stats.LocalDateKey(t.now())
	log := t.DailyLog(ctx, date)
	v := log[subject].Float() + delta
	if v < 0 {
		v = 0
	}
	log[subject] = model.Num(v)
	return log, t.Persist(ctx, DailyKey(date), log)
}

// QuickHistory returns every stored quick-log day, keyed by date.
func (t *Tracker) QuickHistory(ctx context.Context) (map[string]model.DailyLog, error) {
	keys, err := t.kv.Keys(ctx, DailyKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list quick logs: %w", err)
	}
	out := make(map[string]model.DailyLog, len(keys))
	for _, key := range keys {
		date := strings.TrimPrefix(key, DailyKeyPrefix)
		log := model.DailyLog{}
		if t.Restore(ctx, key, &log) {
			out[date] = log
		}
	}
	return out, nil
}

// PruneQuickLogs deletes quick-log days before the given date and reports
// how many were removed.
func (t *Tracker) PruneQuickLogs(ctx context.Context, before string) (int, error) {
	if _, err := time.Parse(stats.DateLayout, before); err != nil {
		return 0, fmt.Errorf("date %q is not YYYY-MM-DD: %w", before, ErrInvalid)
	}
	keys, err := t.kv.Keys(ctx, DailyKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list quick logs: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if strings.TrimPrefix(key, DailyKeyPrefix) >= before {
			continue
		}
		if err := t.kv.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		removed++
	}
	t.log.Info("quick logs pruned", zap.String("before", before), zap.Int("removed", removed))
	return removed, nil
}

func cloneCounts(in model.Goals) model.Goals {
	out := make(model.Goals, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func normalizeBreakdown(in map[model.Subject]model.SubjectBreakdown) map[model.Subject]model.SubjectBreakdown {
	out := make(map[model.Subject]model.SubjectBreakdown, len(model.Subjects()))
	for _, s := range model.Subjects() {
		b := in[s]
		b.Mistakes = b.Mistakes.Clone()
		out[s] = b
	}
	return out
}
