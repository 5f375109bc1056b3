package quotes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.txt")
	content := "# header\nfirst quote\n\n  second quote  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write quotes: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || got[0] != "first quote" || got[1] != "second quote" {
		t.Fatalf("unexpected quotes: %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.txt")
	if err := os.WriteFile(path, []byte("\n# only a comment\n"), 0o644); err != nil {
		t.Fatalf("write quotes: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty quotes file")
	}
}

func TestLoadDefault(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(Builtin) {
		t.Fatalf("expected builtin quotes, got %d", len(got))
	}
}

func TestPickerDeterministic(t *testing.T) {
	list := []string{"a", "b", "c"}
	first := NewWithSeed(list, 42)
	second := NewWithSeed(list, 42)
	for i := 0; i < 10; i++ {
		a, b := first.Pick(), second.Pick()
		if a != b {
			t.Fatalf("expected equal picks for equal seeds, got %q and %q", a, b)
		}
		if a != "a" && a != "b" && a != "c" {
			t.Fatalf("unexpected pick %q", a)
		}
	}
}

func TestPickerFallsBackToBuiltin(t *testing.T) {
	q := New(nil).Pick()
	for _, b := range Builtin {
		if q == b {
			return
		}
	}
	t.Fatalf("expected a builtin quote, got %q", q)
}
