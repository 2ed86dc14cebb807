// Package suggest picks topics for the next practice session.
package suggest

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/trackly/internal/stats"
)

// Weights bias the pick toward topics that need the most work.
var Weights = map[stats.Bucket]float64{
	stats.BucketNeedsWork: 4,
	stats.BucketImproving: 3,
	stats.BucketUntouched: 2,
	stats.BucketMastered:  1,
}

// Picker draws weighted random topics.
type Picker struct {
	rnd *rand.Rand
}

// New returns a Picker seeded with the current time.
func New() *Picker {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Picker.
func NewWithSeed(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects up to count distinct topics, each draw weighted by bucket.
func (p *Picker) Pick(cells []stats.TopicCell, count int) []stats.TopicCell {
	if count <= 0 || len(cells) == 0 {
		return nil
	}
	pool := append([]stats.TopicCell(nil), cells...)
	weights := make([]float64, len(pool))
	total := 0.0
	for i, c := range pool {
		weights[i] = Weights[c.Bucket]
		total += weights[i]
	}

	result := make([]stats.TopicCell, 0, count)
	for len(result) < count && len(pool) > 0 {
		r := p.rnd.Float64() * total
		acc := 0.0
		idx := len(pool) - 1
		for j, w := range weights {
			acc += w
			if r < acc {
				idx = j
				break
			}
		}
		result = append(result, pool[idx])
		total -= weights[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return result
}
