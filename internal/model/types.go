// Package model defines shared data structures.
package model

import "time"

// CourseID identifies a course in the catalog.
type CourseID string

// ComponentID identifies a graded component within a course.
type ComponentID string

// Marks maps course and component to a mark value.
type Marks map[CourseID]map[ComponentID]float64

// Get returns the mark for a component and whether it was present.
func (m Marks) Get(course CourseID, comp ComponentID) (float64, bool) {
	comps, ok := m[course]
	if !ok {
		return 0, false
	}
	v, ok := comps[comp]
	return v, ok
}

// Set stores a mark, creating the course entry if needed.
func (m Marks) Set(course CourseID, comp ComponentID, value float64) {
	comps, ok := m[course]
	if !ok {
		comps = map[ComponentID]float64{}
		m[course] = comps
	}
	comps[comp] = value
}

// ComponentSet is a set of component identifiers.
type ComponentSet map[ComponentID]struct{}

// NewComponentSet builds a set from the given identifiers.
func NewComponentSet(ids ...ComponentID) ComponentSet {
	set := make(ComponentSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Completed records which components of each course have final marks.
type Completed map[CourseID]ComponentSet

// Has reports whether a component is marked completed.
func (c Completed) Has(course CourseID, comp ComponentID) bool {
	set, ok := c[course]
	if !ok {
		return false
	}
	_, ok = set[comp]
	return ok
}

// Toggle flips the completed state of a component.
func (c Completed) Toggle(course CourseID, comp ComponentID) {
	set, ok := c[course]
	if !ok {
		set = ComponentSet{}
		c[course] = set
	}
	if _, done := set[comp]; done {
		delete(set, comp)
		return
	}
	set[comp] = struct{}{}
}

// Input holds everything one evaluation needs besides the catalog.
type Input struct {
	TargetGPA float64
	Current   Marks
	Completed Completed
}

// ReferenceScore holds fixed class-wide numbers for a component.
type ReferenceScore struct {
	Highest float64
	Least   float64
	Avg     float64
}

// ScheduleEntry is an upcoming exam date for a course.
type ScheduleEntry struct {
	Date   time.Time
	Course CourseID
}
