package suggest

import (
	"testing"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

func cells() []stats.TopicCell {
	return []stats.TopicCell{
		{Subject: model.Physics, Topic: "Optics", Bucket: stats.BucketNeedsWork},
		{Subject: model.Physics, Topic: "Kinematics", Bucket: stats.BucketMastered},
		{Subject: model.Physics, Topic: "Waves", Bucket: stats.BucketUntouched},
		{Subject: model.Physics, Topic: "Gravitation", Bucket: stats.BucketImproving},
	}
}

func TestPickReturnsDistinctTopics(t *testing.T) {
	p := NewWithSeed(7)
	got := p.Pick(cells(), 10)
	if len(got) != 4 {
		t.Fatalf("expected every topic once, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, c := range got {
		if seen[c.Topic] {
			t.Fatalf("topic %s picked twice", c.Topic)
		}
		seen[c.Topic] = true
	}
}

func TestPickFavoursWeakTopics(t *testing.T) {
	p := NewWithSeed(42)
	counts := map[stats.Bucket]int{}
	for i := 0; i < 4000; i++ {
		got := p.Pick(cells(), 1)
		counts[got[0].Bucket]++
	}
	if !(counts[stats.BucketNeedsWork] > counts[stats.BucketImproving] &&
		counts[stats.BucketImproving] > counts[stats.BucketUntouched] &&
		counts[stats.BucketUntouched] > counts[stats.BucketMastered]) {
		t.Fatalf("expected picks ordered by weakness, got %v", counts)
	}
}

func TestPickEmpty(t *testing.T) {
	p := NewWithSeed(1)
	if got := p.Pick(nil, 3); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := p.Pick(cells(), 0); got != nil {
		t.Fatalf("expected nil for zero count, got %v", got)
	}
}
