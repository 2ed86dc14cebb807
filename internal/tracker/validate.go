package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

// ValidateSession checks a session before it is stored. Mistake tags are
// not reconciled with the incorrect count; the logging flow does that.
func ValidateSession(s model.Session) error {
	if !s.Subject.Valid() {
		return fmt.Errorf("subject %q: %w", s.Subject, ErrInvalid)
	}
	if strings.TrimSpace(s.Topic) == "" {
		return fmt.Errorf("topic is empty: %w", ErrInvalid)
	}
	attempted := s.Attempted.Float()
	correct := s.Correct.Float()
	if attempted < 0 {
		return fmt.Errorf("attempted must be >= 0: %w", ErrInvalid)
	}
	if correct < 0 || correct > attempted {
		return fmt.Errorf("correct must be between 0 and attempted (%v): %w", attempted, ErrInvalid)
	}
	for k, v := range s.Mistakes {
		if !k.Valid() {
			return fmt.Errorf("mistake type %q: %w", k, ErrInvalid)
		}
		if v.Float() < 0 {
			return fmt.Errorf("mistake count for %s must be >= 0: %w", k, ErrInvalid)
		}
	}
	return nil
}

// ValidateTest checks the fields every stored test needs.
func ValidateTest(tr model.TestResult) error {
	if strings.TrimSpace(tr.Name) == "" {
		return fmt.Errorf("test name is empty: %w", ErrInvalid)
	}
	if _, err := time.Parse(stats.DateLayout, tr.Date); err != nil {
		return fmt.Errorf("test date %q is not YYYY-MM-DD: %w", tr.Date, ErrInvalid)
	}
	if _, err := model.ParseTemperament(string(tr.Temperament)); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	for subject, b := range tr.Breakdown {
		if !subject.Valid() {
			return fmt.Errorf("subject %q: %w", subject, ErrInvalid)
		}
		if b.Correct.Float() < 0 || b.Incorrect.Float() < 0 || b.Unattempted.Float() < 0 {
			return fmt.Errorf("%s counts must be >= 0: %w", subject, ErrInvalid)
		}
	}
	return nil
}
