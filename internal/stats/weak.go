package stats

import (
	"sort"
)

// WeakestTopics returns up to top attempted topics ordered by lowest accuracy.
// Untouched topics are skipped; ties break on attempts then name.
func WeakestTopics(cells []TopicCell, top int) []TopicCell {
	candidates := make([]TopicCell, 0, len(cells))
	for _, c := range cells {
		if c.Bucket == BucketUntouched {
			continue
		}
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := candidates[i].Accuracy()
		aj := candidates[j].Accuracy()
		if ai == aj {
			if candidates[i].Attempted == candidates[j].Attempted {
				return candidates[i].Topic < candidates[j].Topic
			}
			return candidates[i].Attempted > candidates[j].Attempted
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}
