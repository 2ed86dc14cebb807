package stats

import (
	"sort"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/safe"
)

// Distribution sums mistake counts per type.
type Distribution struct {
	Counts map[model.MistakeType]float64
	Total  float64
}

// MistakeBar is one ranked entry of a distribution.
type MistakeBar struct {
	Type  model.MistakeType
	Count float64
	Share float64
}

// MergeMistakes sums any number of mistake maps. Unknown keys are ignored.
func MergeMistakes(maps ...model.Mistakes) Distribution {
	d := Distribution{Counts: make(map[model.MistakeType]float64, len(model.MistakeTypes()))}
	for _, t := range model.MistakeTypes() {
		d.Counts[t] = 0
	}
	for _, m := range maps {
		for _, t := range model.MistakeTypes() {
			v := safe.Number(float64(m[t]))
			d.Counts[t] += v
			d.Total += v
		}
	}
	return d
}

// MistakeDistribution sums mistake tags across sessions.
func MistakeDistribution(sessions []model.Session) Distribution {
	maps := make([]model.Mistakes, 0, len(sessions))
	for _, s := range sessions {
		maps = append(maps, s.Mistakes)
	}
	return MergeMistakes(maps...)
}

// Visible returns bars ranked by count. Once any mistake is recorded, empty
// types are hidden; with no data at all every type is listed at zero.
func (d Distribution) Visible() []MistakeBar {
	bars := make([]MistakeBar, 0, len(model.MistakeTypes()))
	for _, t := range model.MistakeTypes() {
		count := d.Counts[t]
		if d.Total > 0 && count <= 0 {
			continue
		}
		bars = append(bars, MistakeBar{Type: t, Count: count, Share: safe.Divide(count, d.Total)})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Count > bars[j].Count
	})
	return bars
}
