package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/trackly/internal/model"
)

// DateLayout is the calendar key format.
const DateLayout = "2006-01-02"

// SentinelDateKey is returned for timestamps that cannot be represented.
const SentinelDateKey = "1970-01-01"

// LocalDateKey formats t as YYYY-MM-DD in the local timezone.
func LocalDateKey(t time.Time) string {
	if t.IsZero() {
		return SentinelDateKey
	}
	local := t.In(time.Local)
	if y := local.Year(); y < 0 || y > 9999 {
		return SentinelDateKey
	}
	return local.Format(DateLayout)
}

// LocalDateKeyMillis formats an epoch-millis timestamp as a local date key.
func LocalDateKeyMillis(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return SentinelDateKey
	}
	// Roughly year 9999; beyond that time.UnixMilli wraps.
	if math.Abs(ms) > 253402300799000 {
		return SentinelDateKey
	}
	return LocalDateKey(time.UnixMilli(int64(ms)))
}

// ParseDateKey parses a stored YYYY-MM-DD date at local midnight.
// Malformed input yields the sentinel date.
func ParseDateKey(key string) time.Time {
	t, err := time.ParseInLocation(DateLayout, key, time.Local)
	if err != nil {
		t, _ = time.ParseInLocation(DateLayout, SentinelDateKey, time.Local)
	}
	return t
}

// SessionDateKey returns the local calendar day a session belongs to.
func SessionDateKey(s model.Session) string {
	return LocalDateKeyMillis(float64(s.Timestamp))
}

// SessionsOn returns sessions logged on the given local day.
func SessionsOn(sessions []model.Session, key string) []model.Session {
	var out []model.Session
	for _, s := range sessions {
		if SessionDateKey(s) == key {
			out = append(out, s)
		}
	}
	return out
}

// DayCount is the number of sessions and questions on one day.
type DayCount struct {
	Date      string
	Sessions  int
	Attempted float64
}

// DailyCounts buckets sessions into the last days ending at now, oldest first.
func DailyCounts(sessions []model.Session, days int, now time.Time) []DayCount {
	if days <= 0 {
		return nil
	}
	byDay := map[string]*DayCount{}
	out := make([]DayCount, days)
	for i := 0; i < days; i++ {
		key := LocalDateKey(now.AddDate(0, 0, i-days+1))
		out[i] = DayCount{Date: key}
		byDay[key] = &out[i]
	}
	for _, s := range sessions {
		if entry, ok := byDay[SessionDateKey(s)]; ok {
			entry.Sessions++
			entry.Attempted += s.Attempted.Float()
		}
	}
	return out
}

// Streak counts consecutive days with at least one session, ending today.
// An empty today does not break a streak that ran through yesterday.
func Streak(sessions []model.Session, now time.Time) int {
	active := map[string]struct{}{}
	for _, s := range sessions {
		active[SessionDateKey(s)] = struct{}{}
	}
	day := now
	if _, ok := active[LocalDateKey(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := active[LocalDateKey(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
