package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "trackly.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestPutGetOverwrite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Put(ctx, "trackly_goals", []byte(`{"Physics":10}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Put(ctx, "trackly_goals", []byte(`{"Physics":20}`)); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}
	got, ok, err := st.Get(ctx, "trackly_goals")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"Physics":20}` {
		t.Fatalf("expected last write to win, got %s", got)
	}
}

func TestKeysAndDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"trackly_daily_2026-01-02", "trackly_daily_2026-01-01", "trackly_sessions"} {
		if err := st.Put(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	keys, err := st.Keys(ctx, "trackly_daily_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"trackly_daily_2026-01-01", "trackly_daily_2026-01-02"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	if err := st.Delete(ctx, "trackly_daily_2026-01-01"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	keys, err = st.Keys(ctx, "trackly_daily_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key after delete, got %v", keys)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackly.db")
	ctx := context.Background()
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Put(ctx, "trackly_theme", []byte(`"midnight"`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st.Close() }()
	got, ok, err := st.Get(ctx, "trackly_theme")
	if err != nil || !ok || string(got) != `"midnight"` {
		t.Fatalf("unexpected value after reopen: %s ok=%v err=%v", got, ok, err)
	}
}
