// Package stats contains mark analysis and text reporting.
package stats

import (
	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/model"
	"github.com/verte-zerg/marksplan/internal/planner"
)

// Row is one course component in a plan report.
type Row struct {
	Course    model.CourseID
	Component model.ComponentID
	Weight    float64
	MaxMarks  float64
	Current   float64
	Required  float64
	Adjusted  float64
	Completed bool
	Capped    bool
	OnTrack   bool
}

// Report contains precomputed data for plan rendering.
type Report struct {
	TargetGPA float64
	Feasible  bool
	Rows      []Row
	Capped    []planner.CappedComponent
}

// BuildReport flattens an evaluation into rows in catalog order.
func BuildReport(cat *catalog.Catalog, in model.Input, eval planner.Evaluation) Report {
	capped := map[model.CourseID]map[model.ComponentID]bool{}
	for _, c := range eval.Capped {
		if capped[c.Course] == nil {
			capped[c.Course] = map[model.ComponentID]bool{}
		}
		capped[c.Course][c.Component] = true
	}

	report := Report{
		TargetGPA: eval.TargetGPA,
		Feasible:  eval.Feasible,
		Capped:    eval.Capped,
	}
	for _, course := range cat.Courses() {
		for _, comp := range course.Components {
			current, _ := in.Current.Get(course.ID, comp.ID)
			required, _ := eval.Required.Get(course.ID, comp.ID)
			adjusted, _ := eval.Adjusted.Get(course.ID, comp.ID)
			report.Rows = append(report.Rows, Row{
				Course:    course.ID,
				Component: comp.ID,
				Weight:    comp.Weight,
				MaxMarks:  comp.MaxMarks,
				Current:   current,
				Required:  required,
				Adjusted:  adjusted,
				Completed: in.Completed.Has(course.ID, comp.ID),
				Capped:    capped[course.ID][comp.ID],
				OnTrack:   eval.Standing[course.ID][comp.ID],
			})
		}
	}
	return report
}

// CourseRows returns the rows belonging to one course.
func (r Report) CourseRows(course model.CourseID) []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Course == course {
			out = append(out, row)
		}
	}
	return out
}
