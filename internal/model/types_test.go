package model

import "testing"

func TestMarksGetSet(t *testing.T) {
	m := Marks{}
	m.Set("BD", "M1", 10)
	m.Set("BD", "M1", 20)
	if v, ok := m.Get("BD", "M1"); !ok || v != 20 {
		t.Fatalf("expected BD M1 20, got %v (ok=%v)", v, ok)
	}
	if _, ok := m.Get("BD", "M2"); ok {
		t.Fatalf("expected missing component to report absent")
	}
	if _, ok := m.Get("CN", "M1"); ok {
		t.Fatalf("expected missing course to report absent")
	}
}

func TestCompletedToggle(t *testing.T) {
	c := Completed{}
	c.Toggle("BD", "M1")
	if !c.Has("BD", "M1") {
		t.Fatalf("expected BD M1 to be completed")
	}
	c.Toggle("BD", "M1")
	if c.Has("BD", "M1") {
		t.Fatalf("expected BD M1 to be cleared")
	}
	var empty Completed
	if empty.Has("BD", "M1") {
		t.Fatalf("expected nil set to report nothing completed")
	}
}
