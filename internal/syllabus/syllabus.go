// Package syllabus loads the topic list for each subject.
package syllabus

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/trackly/internal/model"
)

// Builtin returns a copy of the bundled topic list for a subject.
func Builtin(subject model.Subject) []string {
	return append([]string(nil), builtin[subject]...)
}

// FileName returns the override file name for a subject, e.g. physics.txt.
func FileName(subject model.Subject) string {
	return strings.ToLower(string(subject)) + ".txt"
}

// Load returns topics for every subject. A <subject>.txt file in dir
// replaces the bundled list for that subject; missing files are not errors.
func Load(dir string) (map[model.Subject][]string, error) {
	out := make(map[model.Subject][]string, len(model.Subjects()))
	for _, subject := range model.Subjects() {
		out[subject] = Builtin(subject)
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, FileName(subject))
		topics, err := LoadTopics(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s topics: %w", subject, err)
		}
		out[subject] = topics
	}
	return out, nil
}

// LoadTopics reads one topic per line. Blank lines and lines starting with
// # are skipped; repeated topics are kept once.
func LoadTopics(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only topic list.
			_ = cerr
		}
	}()

	var topics []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("topic list %s is empty", path)
	}
	return topics, nil
}
