package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/marksplan/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	courses := cat.Courses()
	want := []model.CourseID{"BD", "HPC", "SE", "CN", "CB"}
	if len(courses) != len(want) {
		t.Fatalf("expected %d courses, got %d", len(want), len(courses))
	}
	for i, id := range want {
		if courses[i].ID != id {
			t.Fatalf("expected course %s at %d, got %s", id, i, courses[i].ID)
		}
	}
	if cat.TotalCredits() != 16 {
		t.Fatalf("expected 16 total credits, got %v", cat.TotalCredits())
	}

	bd, ok := cat.Course("BD")
	if !ok {
		t.Fatalf("expected BD course")
	}
	comps := []model.ComponentID{"M1", "M2", "EndSem", "Others"}
	for i, id := range comps {
		if bd.Components[i].ID != id {
			t.Fatalf("expected component %s at %d, got %s", id, i, bd.Components[i].ID)
		}
	}
	if bd.TotalWeight() != 100 {
		t.Fatalf("expected BD total weight 100, got %v", bd.TotalWeight())
	}
	for _, course := range courses {
		if course.TotalWeight() != 100 {
			t.Fatalf("expected %s weightages to sum to 100, got %v", course.ID, course.TotalWeight())
		}
	}
	endSem, _ := bd.Component("EndSem")
	if endSem.Weight != 30 || endSem.MaxMarks != 100 {
		t.Fatalf("unexpected EndSem: %+v", endSem)
	}

	ref, ok := cat.Reference("CN", "M1")
	if !ok || ref.Highest != 32 || ref.Least != 12 || ref.Avg != 22 {
		t.Fatalf("unexpected CN M1 reference: %+v (ok=%v)", ref, ok)
	}
	if _, ok := cat.Reference("BD", "Others"); ok {
		t.Fatalf("expected no reference for BD Others")
	}

	schedule := cat.Schedule()
	if len(schedule) != 5 {
		t.Fatalf("expected 5 schedule entries, got %d", len(schedule))
	}
	if schedule[0].Course != "BD" || schedule[4].Course != "CB" {
		t.Fatalf("unexpected schedule order: %+v", schedule)
	}
}

func TestCoursesReturnsCopies(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	courses := cat.Courses()
	courses[0].Components[0].MaxMarks = 999
	again, _ := cat.Course(courses[0].ID)
	if again.Components[0].MaxMarks == 999 {
		t.Fatalf("catalog was mutated through Courses()")
	}
}

func TestParseRejectsMismatchedKeys(t *testing.T) {
	data := `
[courses.X]
credits = 2

[courses.X.weightages]
A = 50
B = 50

[courses.X.max-marks]
A = 10
C = 20
`
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatalf("expected error for mismatched key sets")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `"B" has a weightage but no max-marks`) {
		t.Fatalf("missing weightage problem in %q", msg)
	}
	if !strings.Contains(msg, `"C" has max-marks but no weightage`) {
		t.Fatalf("missing max-marks problem in %q", msg)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	data := `
[courses.X]
credits = 0

[courses.X.weightages]
A = -5

[courses.X.max-marks]
A = -1

[[schedule]]
date = 2024-01-01
course = "Y"
`
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"credits must be > 0", "weightage must be >= 0", "max-marks must be >= 0", `unknown course "Y"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	data := `
[courses.X]
credits = 2
creditz = 3

[courses.X.weightages]
A = 100

[courses.X.max-marks]
A = 10
`
	_, err := Parse([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "creditz") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestParseKeepsFileOrder(t *testing.T) {
	data := `
[courses.Zeta]
credits = 1

[courses.Zeta.weightages]
Quiz = 20
Final = 80

[courses.Zeta.max-marks]
Quiz = 10
Final = 50

[courses.Alpha]
credits = 2

[courses.Alpha.weightages]
Only = 100

[courses.Alpha.max-marks]
Only = 100
`
	cat, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	courses := cat.Courses()
	if courses[0].ID != "Zeta" || courses[1].ID != "Alpha" {
		t.Fatalf("expected file order, got %s, %s", courses[0].ID, courses[1].ID)
	}
	if courses[0].Components[0].ID != "Quiz" || courses[0].Components[1].ID != "Final" {
		t.Fatalf("expected component file order, got %+v", courses[0].Components)
	}
	if !cat.HasComponent("Zeta", "Final") || cat.HasComponent("Alpha", "Final") {
		t.Fatalf("unexpected HasComponent results")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.toml")
	data := `
[courses.X]
credits = 4

[courses.X.weightages]
A = 100

[courses.X.max-marks]
A = 25
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.TotalCredits() != 4 {
		t.Fatalf("expected 4 credits, got %v", cat.TotalCredits())
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
