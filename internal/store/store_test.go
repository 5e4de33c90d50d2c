package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestPreferenceRoundTrip(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "nested", "reptrack.db"))
	ctx := context.Background()

	if _, ok, err := st.GetPreference(ctx, "colorScheme"); err != nil || ok {
		t.Fatalf("expected missing preference, got ok=%v err=%v", ok, err)
	}
	if err := st.SetPreference(ctx, "colorScheme", "dark"); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	if err := st.SetPreference(ctx, "colorScheme", "colorful"); err != nil {
		t.Fatalf("overwrite preference: %v", err)
	}
	value, ok, err := st.GetPreference(ctx, "colorScheme")
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if !ok || value != "colorful" {
		t.Fatalf("expected colorful, got %q (ok=%v)", value, ok)
	}
}

func TestPreferencePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reptrack.db")
	ctx := context.Background()

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.SetPreference(ctx, "colorScheme", "dark"); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	second := openTestStore(t, path)
	value, ok, err := second.GetPreference(ctx, "colorScheme")
	if err != nil || !ok || value != "dark" {
		t.Fatalf("expected dark after reopen, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
