// Package catalog loads and validates the static course catalog.
package catalog

import (
	_ "embed" // Default catalog.
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/marksplan/internal/model"
)

//go:embed default.toml
var defaultCatalog []byte

// ErrInvalid is returned when a catalog fails validation.
var ErrInvalid = errors.New("invalid catalog")

// Component is a graded component of a course.
type Component struct {
	ID       model.ComponentID
	Weight   float64
	MaxMarks float64
}

// Course is a catalog entry.
type Course struct {
	ID         model.CourseID
	Credits    float64
	Components []Component
}

// TotalWeight returns the sum of component weightages.
func (c Course) TotalWeight() float64 {
	total := 0.0
	for _, comp := range c.Components {
		total += comp.Weight
	}
	return total
}

// Component looks up a component by id.
func (c Course) Component(id model.ComponentID) (Component, bool) {
	for _, comp := range c.Components {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}

// Catalog is an immutable set of courses plus reference tables.
type Catalog struct {
	courses      []Course
	index        map[model.CourseID]int
	reference    map[model.CourseID]map[model.ComponentID]model.ReferenceScore
	schedule     []model.ScheduleEntry
	totalCredits float64
}

type fileCatalog struct {
	Courses   map[string]fileCourse                      `toml:"courses"`
	Reference map[string]map[string]model.ReferenceScore `toml:"reference"`
	Schedule  []fileScheduleEntry                        `toml:"schedule"`
}

type fileCourse struct {
	Credits    float64            `toml:"credits"`
	Weightages map[string]float64 `toml:"weightages"`
	MaxMarks   map[string]float64 `toml:"max-marks"`
}

type fileScheduleEntry struct {
	Date   time.Time `toml:"date"`
	Course string    `toml:"course"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a TOML file. An empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	md, err := toml.Decode(string(data), &fc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}
	courseOrder, compOrder := keyOrder(md.Keys())
	return build(fc, courseOrder, compOrder)
}

// keyOrder recovers the order in which courses and components appear in the file.
func keyOrder(keys []toml.Key) ([]string, map[string][]string) {
	var courses []string
	seenCourse := map[string]bool{}
	comps := map[string][]string{}
	seenComp := map[string]map[string]bool{}
	for _, k := range keys {
		if len(k) < 2 || k[0] != "courses" {
			continue
		}
		course := k[1]
		if !seenCourse[course] {
			seenCourse[course] = true
			courses = append(courses, course)
		}
		if len(k) != 4 || (k[2] != "weightages" && k[2] != "max-marks") {
			continue
		}
		if seenComp[course] == nil {
			seenComp[course] = map[string]bool{}
		}
		if !seenComp[course][k[3]] {
			seenComp[course][k[3]] = true
			comps[course] = append(comps[course], k[3])
		}
	}
	return courses, comps
}

func build(fc fileCatalog, courseOrder []string, compOrder map[string][]string) (*Catalog, error) {
	var problems []error
	if len(fc.Courses) == 0 {
		problems = append(problems, fmt.Errorf("no courses defined"))
	}

	cat := &Catalog{
		index:     map[model.CourseID]int{},
		reference: map[model.CourseID]map[model.ComponentID]model.ReferenceScore{},
	}
	for _, name := range orderedKeys(fc.Courses, courseOrder) {
		fcourse := fc.Courses[name]
		course, errs := buildCourse(name, fcourse, compOrder[name])
		problems = append(problems, errs...)
		cat.index[course.ID] = len(cat.courses)
		cat.courses = append(cat.courses, course)
		cat.totalCredits += course.Credits
	}

	for courseName, comps := range fc.Reference {
		course, ok := cat.Course(model.CourseID(courseName))
		if !ok {
			problems = append(problems, fmt.Errorf("reference: unknown course %q", courseName))
			continue
		}
		for compName, score := range comps {
			if _, ok := course.Component(model.ComponentID(compName)); !ok {
				problems = append(problems, fmt.Errorf("reference %s: unknown component %q", courseName, compName))
				continue
			}
			if cat.reference[course.ID] == nil {
				cat.reference[course.ID] = map[model.ComponentID]model.ReferenceScore{}
			}
			cat.reference[course.ID][model.ComponentID(compName)] = score
		}
	}

	for i, entry := range fc.Schedule {
		if _, ok := cat.index[model.CourseID(entry.Course)]; !ok {
			problems = append(problems, fmt.Errorf("schedule[%d]: unknown course %q", i, entry.Course))
			continue
		}
		if entry.Date.IsZero() {
			problems = append(problems, fmt.Errorf("schedule[%d]: date is required", i))
			continue
		}
		cat.schedule = append(cat.schedule, model.ScheduleEntry{Date: entry.Date, Course: model.CourseID(entry.Course)})
	}
	sort.SliceStable(cat.schedule, func(i, j int) bool {
		return cat.schedule[i].Date.Before(cat.schedule[j].Date)
	})

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
	}
	return cat, nil
}

func buildCourse(name string, fc fileCourse, order []string) (Course, []error) {
	var problems []error
	course := Course{ID: model.CourseID(name), Credits: fc.Credits}
	if strings.TrimSpace(name) == "" {
		problems = append(problems, fmt.Errorf("course name must not be empty"))
	}
	if fc.Credits <= 0 {
		problems = append(problems, fmt.Errorf("course %s: credits must be > 0", name))
	}
	if len(fc.Weightages) == 0 {
		problems = append(problems, fmt.Errorf("course %s: no components", name))
	}
	for comp := range fc.Weightages {
		if _, ok := fc.MaxMarks[comp]; !ok {
			problems = append(problems, fmt.Errorf("course %s: component %q has a weightage but no max-marks", name, comp))
		}
	}
	for comp := range fc.MaxMarks {
		if _, ok := fc.Weightages[comp]; !ok {
			problems = append(problems, fmt.Errorf("course %s: component %q has max-marks but no weightage", name, comp))
		}
	}
	for _, comp := range orderedKeys(fc.Weightages, order) {
		maxMarks, ok := fc.MaxMarks[comp]
		if !ok {
			continue
		}
		weight := fc.Weightages[comp]
		if weight < 0 {
			problems = append(problems, fmt.Errorf("course %s: component %s: weightage must be >= 0", name, comp))
		}
		if maxMarks < 0 {
			problems = append(problems, fmt.Errorf("course %s: component %s: max-marks must be >= 0", name, comp))
		}
		course.Components = append(course.Components, Component{
			ID:       model.ComponentID(comp),
			Weight:   weight,
			MaxMarks: maxMarks,
		})
	}
	return course, problems
}

// orderedKeys returns the keys of m in the given order, then any others sorted.
func orderedKeys[V any](m map[string]V, order []string) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Courses returns the courses in catalog order.
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.courses))
	for i, course := range c.courses {
		out[i] = cloneCourse(course)
	}
	return out
}

// Course looks up a course by id.
func (c *Catalog) Course(id model.CourseID) (Course, bool) {
	idx, ok := c.index[id]
	if !ok {
		return Course{}, false
	}
	return cloneCourse(c.courses[idx]), true
}

// HasComponent reports whether the course defines the component.
func (c *Catalog) HasComponent(course model.CourseID, comp model.ComponentID) bool {
	idx, ok := c.index[course]
	if !ok {
		return false
	}
	_, ok = c.courses[idx].Component(comp)
	return ok
}

// TotalCredits returns the sum of credits over all courses.
func (c *Catalog) TotalCredits() float64 {
	return c.totalCredits
}

// Reference returns the reference score for a component, if defined.
func (c *Catalog) Reference(course model.CourseID, comp model.ComponentID) (model.ReferenceScore, bool) {
	score, ok := c.reference[course][comp]
	return score, ok
}

// Schedule returns upcoming exams sorted by date.
func (c *Catalog) Schedule() []model.ScheduleEntry {
	return append([]model.ScheduleEntry(nil), c.schedule...)
}

func cloneCourse(course Course) Course {
	course.Components = append([]Component(nil), course.Components...)
	return course
}
