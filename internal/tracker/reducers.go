package tracker

import (
	"github.com/verte-zerg/trackly/internal/model"
)

// Reducers never modify their input slices; each returns a fresh collection.

func appendItem[T any](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, item)
}

func removeByID[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(list))
	found := false
	for _, item := range list {
		if idOf(item) == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}

func replaceByID[T any](list []T, item T, idOf func(T) string) ([]T, bool) {
	out := make([]T, len(list))
	copy(out, list)
	for i := range out {
		if idOf(out[i]) == idOf(item) {
			out[i] = item
			return out, true
		}
	}
	return out, false
}

func findByID[T any](list []T, id string, idOf func(T) string) (T, bool) {
	for _, item := range list {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func sessionID(s model.Session) string { return s.ID }

func testID(t model.TestResult) string { return t.ID }

func targetID(t model.Target) string { return t.ID }
