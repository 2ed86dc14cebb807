package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/trackly/internal/model"
)

// Bucket classifies topic mastery.
type Bucket int

// Mastery buckets, worst first after untouched.
const (
	BucketUntouched Bucket = iota
	BucketNeedsWork
	BucketImproving
	BucketMastered
)

func (b Bucket) String() string {
	switch b {
	case BucketNeedsWork:
		return "needs work"
	case BucketImproving:
		return "improving"
	case BucketMastered:
		return "mastered"
	default:
		return "untouched"
	}
}

// Thresholds for Classify.
const (
	needsWorkMinAttempts = 20
	needsWorkMinAccuracy = 0.30
	improvingMinAttempts = 50
	improvingMinAccuracy = 0.70
)

// Classify maps attempt count and correct count to a mastery bucket.
// Each tier is an OR of an attempt floor and an accuracy floor, so a topic
// with high accuracy but few attempts stays below mastered.
func Classify(attempted, correct float64) Bucket {
	if attempted <= 0 {
		return BucketUntouched
	}
	acc := Accuracy(attempted, correct)
	if attempted < needsWorkMinAttempts || acc < needsWorkMinAccuracy {
		return BucketNeedsWork
	}
	if attempted < improvingMinAttempts || acc < improvingMinAccuracy {
		return BucketImproving
	}
	return BucketMastered
}

// TopicCell is one heatmap entry.
type TopicCell struct {
	Subject   model.Subject
	Topic     string
	Attempted float64
	Correct   float64
	Bucket    Bucket
}

// Accuracy returns the topic's correct fraction.
func (c TopicCell) Accuracy() float64 {
	return Accuracy(c.Attempted, c.Correct)
}

// TopicHeatmap classifies each known topic of a subject over all sessions.
// Topics seen in sessions but missing from topics are appended in name order.
func TopicHeatmap(sessions []model.Session, subject model.Subject, topics []string) []TopicCell {
	type sums struct{ attempted, correct float64 }
	byTopic := map[string]*sums{}
	for _, s := range sessions {
		if s.Subject != subject {
			continue
		}
		topic := strings.TrimSpace(s.Topic)
		entry, ok := byTopic[topic]
		if !ok {
			entry = &sums{}
			byTopic[topic] = entry
		}
		entry.attempted += s.Attempted.Float()
		entry.correct += s.Correct.Float()
	}

	known := make(map[string]struct{}, len(topics))
	ordered := make([]string, 0, len(topics)+len(byTopic))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if _, dup := known[t]; dup || t == "" {
			continue
		}
		known[t] = struct{}{}
		ordered = append(ordered, t)
	}
	var extra []string
	for t := range byTopic {
		if _, ok := known[t]; !ok && t != "" {
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	ordered = append(ordered, extra...)

	cells := make([]TopicCell, 0, len(ordered))
	for _, t := range ordered {
		cell := TopicCell{Subject: subject, Topic: t}
		if entry, ok := byTopic[t]; ok {
			cell.Attempted = entry.attempted
			cell.Correct = entry.correct
		}
		cell.Bucket = Classify(cell.Attempted, cell.Correct)
		cells = append(cells, cell)
	}
	return cells
}

// BucketCounts tallies cells per bucket.
func BucketCounts(cells []TopicCell) map[Bucket]int {
	out := map[Bucket]int{}
	for _, c := range cells {
		out[c.Bucket]++
	}
	return out
}
