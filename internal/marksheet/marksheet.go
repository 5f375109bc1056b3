// Package marksheet reads a student's marks and completed components from TOML.
package marksheet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/model"
	"github.com/verte-zerg/marksplan/internal/planner"
)

// ErrInvalid is returned when a marks file does not match the catalog.
var ErrInvalid = errors.New("invalid marks")

// Sheet is a decoded marks file.
type Sheet struct {
	// TargetGPA is nil when the file does not set one.
	TargetGPA *float64
	Current   model.Marks
	Completed model.Completed
}

type fileSheet struct {
	TargetGPA *float64                      `toml:"target-gpa,omitempty"`
	Marks     map[string]map[string]float64 `toml:"marks"`
	Completed map[string][]string           `toml:"completed,omitempty"`
}

// Load reads a marks file. A missing file yields an empty sheet.
func Load(path string, cat *catalog.Catalog) (Sheet, error) {
	if path == "" {
		return Empty(cat), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(cat), nil
		}
		return Sheet{}, fmt.Errorf("failed to read marks: %w", err)
	}
	sheet, err := Parse(data, cat)
	if err != nil {
		return Sheet{}, fmt.Errorf("%s: %w", path, err)
	}
	return sheet, nil
}

// Empty returns a sheet with every component at zero and nothing completed.
func Empty(cat *catalog.Catalog) Sheet {
	current := model.Marks{}
	for _, course := range cat.Courses() {
		for _, comp := range course.Components {
			current.Set(course.ID, comp.ID, 0)
		}
	}
	return Sheet{Current: current, Completed: model.Completed{}}
}

// Parse decodes and validates marks against the catalog.
func Parse(data []byte, cat *catalog.Catalog) (Sheet, error) {
	var fs fileSheet
	md, err := toml.Decode(string(data), &fs)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to decode marks: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Sheet{}, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}

	var problems []error
	sheet := Empty(cat)
	if fs.TargetGPA != nil {
		if err := ValidateGPA(*fs.TargetGPA); err != nil {
			problems = append(problems, err)
		}
		gpa := *fs.TargetGPA
		sheet.TargetGPA = &gpa
	}

	for _, courseName := range sortedKeys(fs.Marks) {
		course, ok := cat.Course(model.CourseID(courseName))
		if !ok {
			problems = append(problems, fmt.Errorf("marks: unknown course %q", courseName))
			continue
		}
		for _, compName := range sortedKeys(fs.Marks[courseName]) {
			mark := fs.Marks[courseName][compName]
			comp, ok := course.Component(model.ComponentID(compName))
			if !ok {
				problems = append(problems, fmt.Errorf("marks %s: unknown component %q", courseName, compName))
				continue
			}
			if err := ValidateMark(comp, mark); err != nil {
				problems = append(problems, fmt.Errorf("marks %s: %w", courseName, err))
				continue
			}
			sheet.Current.Set(course.ID, comp.ID, mark)
		}
	}

	for _, courseName := range sortedKeys(fs.Completed) {
		courseID := model.CourseID(courseName)
		if _, ok := cat.Course(courseID); !ok {
			problems = append(problems, fmt.Errorf("completed: unknown course %q", courseName))
			continue
		}
		set := model.ComponentSet{}
		for _, compName := range fs.Completed[courseName] {
			if !cat.HasComponent(courseID, model.ComponentID(compName)) {
				problems = append(problems, fmt.Errorf("completed %s: unknown component %q", courseName, compName))
				continue
			}
			set[model.ComponentID(compName)] = struct{}{}
		}
		sheet.Completed[courseID] = set
	}

	if len(problems) > 0 {
		return Sheet{}, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
	}
	return sheet, nil
}

// ValidateGPA checks a target GPA lies on the grading scale. NaN is rejected.
func ValidateGPA(gpa float64) error {
	if !(gpa >= 0 && gpa <= planner.MaxGPA) {
		return fmt.Errorf("target GPA must be between 0 and %g, got %g", planner.MaxGPA, gpa)
	}
	return nil
}

// ValidateMark checks a mark lies within the component's range.
func ValidateMark(comp catalog.Component, mark float64) error {
	if !(mark >= 0 && mark <= comp.MaxMarks) {
		return fmt.Errorf("%s must be between 0 and %g, got %g", comp.ID, comp.MaxMarks, mark)
	}
	return nil
}

// Input combines the sheet with a target GPA.
func (s Sheet) Input(targetGPA float64) model.Input {
	return model.Input{
		TargetGPA: targetGPA,
		Current:   s.Current,
		Completed: s.Completed,
	}
}

// Encode writes the sheet as a marks file. Every catalog component is listed
// so the file doubles as a checklist.
func Encode(w io.Writer, s Sheet, cat *catalog.Catalog) error {
	fs := fileSheet{
		TargetGPA: s.TargetGPA,
		Marks:     map[string]map[string]float64{},
		Completed: map[string][]string{},
	}
	for _, course := range cat.Courses() {
		marks := map[string]float64{}
		var done []string
		for _, comp := range course.Components {
			mark, _ := s.Current.Get(course.ID, comp.ID)
			marks[string(comp.ID)] = mark
			if s.Completed.Has(course.ID, comp.ID) {
				done = append(done, string(comp.ID))
			}
		}
		fs.Marks[string(course.ID)] = marks
		if len(done) > 0 {
			fs.Completed[string(course.ID)] = done
		}
	}
	return toml.NewEncoder(w).Encode(fs)
}

// WriteFile encodes the sheet to path through a temp file and rename.
func WriteFile(path string, s Sheet, cat *catalog.Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create marks dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "marks-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp marks file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := Encode(writer, s, cat); err != nil {
		return fmt.Errorf("failed to encode marks: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush marks: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close marks file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace marks file: %w", err)
	}
	return nil
}

// Template renders a commented starter marks file for the catalog.
func Template(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("# marksplan marks file\n")
	b.WriteString("# Enter the marks you have so far and list the components that are finished.\n\n")
	b.WriteString("# target-gpa = 8.0\n\n")
	for _, course := range cat.Courses() {
		fmt.Fprintf(&b, "[marks.%s]\n", course.ID)
		for _, comp := range course.Components {
			fmt.Fprintf(&b, "# %s = 0    # out of %g\n", comp.ID, comp.MaxMarks)
		}
		b.WriteString("\n")
	}
	b.WriteString("[completed]\n")
	for _, course := range cat.Courses() {
		fmt.Fprintf(&b, "# %s = [%q]\n", course.ID, course.Components[0].ID)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
