// Package coach asks a language model for a study diagnosis built from
// aggregate practice and test numbers.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

// ErrNoData is returned when there is nothing to analyse yet.
var ErrNoData = errors.New("log some sessions or tests before asking the coach")

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Advice is the structured coach reply.
type Advice struct {
	BottleneckTitle string   `json:"bottleneckTitle"`
	Analysis        string   `json:"analysis"`
	Temperament     string   `json:"temperament"`
	ActionPlan      []string `json:"actionPlan"`
}

// Coach builds prompts and parses replies.
type Coach struct {
	gen Generator
	log *zap.Logger
}

// New returns a Coach backed by gen.
func New(gen Generator, log *zap.Logger) *Coach {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coach{gen: gen, log: log}
}

// Advise sends the report summary to the generator and parses the answer.
func (c *Coach) Advise(ctx context.Context, r stats.Report) (Advice, error) {
	if len(r.Sessions) == 0 && len(r.Trend.Points) == 0 {
		return Advice{}, ErrNoData
	}
	prompt := BuildPrompt(r)
	c.log.Debug("coach prompt", zap.Int("chars", len(prompt)))
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return Advice{}, fmt.Errorf("failed to get coach reply: %w", err)
	}
	advice, err := ParseAdvice(text)
	if err != nil {
		c.log.Warn("unparseable coach reply", zap.String("reply", text), zap.Error(err))
		return Advice{}, err
	}
	return advice, nil
}

// BuildPrompt describes the student's aggregate numbers in prose.
func BuildPrompt(r stats.Report) string {
	var b strings.Builder
	b.WriteString("You are a calm, practical exam coach for a student preparing for a Physics, Chemistry and Maths entrance exam.\n")
	b.WriteString("Find the single biggest bottleneck in the data below and reply with JSON only, using the keys ")
	b.WriteString(`"bottleneckTitle" (short), "analysis" (2-4 sentences), "temperament" (one sentence on exam mindset) and "actionPlan" (3-5 short steps).`)
	b.WriteString("\n\nPractice by subject:\n")
	for _, s := range r.Subjects {
		fmt.Fprintf(&b, "- %s: %.0f attempted, %.0f correct, %d%% accuracy\n", s.Subject, s.Attempted, s.Correct, stats.AccuracyPercent(s.Attempted, s.Correct))
	}

	var cells []stats.TopicCell
	for _, subject := range model.Subjects() {
		cells = append(cells, r.Heatmap[subject]...)
	}
	if weak := stats.WeakestTopics(cells, 5); len(weak) > 0 {
		b.WriteString("\nWeakest topics:\n")
		for _, c := range weak {
			fmt.Fprintf(&b, "- %s / %s: %d%% over %.0f questions (%s)\n", c.Subject, c.Topic, stats.AccuracyPercent(c.Attempted, c.Correct), c.Attempted, c.Bucket)
		}
	}

	writeMistakes(&b, "Practice mistake causes", r.Mistakes)

	if len(r.Trend.Points) > 0 {
		b.WriteString("\nRecent tests (oldest first):\n")
		for _, p := range r.Trend.Points {
			fmt.Fprintf(&b, "- %s %s: %.1f%% overall", p.Date, p.Name, p.Overall)
			for _, subject := range model.Subjects() {
				fmt.Fprintf(&b, ", %s %.0f%%", subject, p.Subjects[subject])
			}
			b.WriteString("\n")
		}
		writeMistakes(&b, "Test mistake causes", r.Trend.Mistakes)
	}
	return b.String()
}

func writeMistakes(b *strings.Builder, title string, d stats.Distribution) {
	if d.Total <= 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%.0f tagged):\n", title, d.Total)
	for _, bar := range d.Visible() {
		fmt.Fprintf(b, "- %s: %.0f (%.0f%%)\n", bar.Type.Label(), bar.Count, bar.Share*100)
	}
}

// ParseAdvice extracts the JSON object from a reply, ignoring code fences
// and any prose around it.
func ParseAdvice(text string) (Advice, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return Advice{}, fmt.Errorf("coach reply has no JSON object")
	}
	var advice Advice
	if err := json.Unmarshal([]byte(body[start:end+1]), &advice); err != nil {
		return Advice{}, fmt.Errorf("failed to decode coach reply: %w", err)
	}
	if strings.TrimSpace(advice.BottleneckTitle) == "" && strings.TrimSpace(advice.Analysis) == "" {
		return Advice{}, fmt.Errorf("coach reply is missing bottleneckTitle and analysis")
	}
	return advice, nil
}
