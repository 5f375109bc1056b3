// Package planner computes the marks needed to reach a target GPA.
package planner

import (
	"math"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/model"
)

// MaxGPA is the top of the grading scale.
const MaxGPA = 10.0

// Planner runs the required/adjusted/feasibility pipeline against one catalog.
// It keeps no state between calls.
type Planner struct {
	cat *catalog.Catalog
}

// CappedComponent is a remaining component whose redistributed requirement
// exceeded its ceiling and was clamped.
type CappedComponent struct {
	Course    model.CourseID
	Component model.ComponentID
	Needed    float64
	MaxMarks  float64
}

// Evaluation is the result of one pipeline run.
type Evaluation struct {
	TargetGPA float64
	Required  model.Marks
	Adjusted  model.Marks
	Feasible  bool
	Capped    []CappedComponent
	// Standing reports, per component, whether the current mark already
	// meets the unadjusted requirement.
	Standing map[model.CourseID]map[model.ComponentID]bool
}

// New returns a Planner for the catalog.
func New(cat *catalog.Catalog) *Planner {
	return &Planner{cat: cat}
}

// Catalog returns the catalog the planner was built with.
func (p *Planner) Catalog() *catalog.Catalog {
	return p.cat
}

// Required computes the marks needed on every component, ignoring completion.
func (p *Planner) Required(targetGPA float64) model.Marks {
	required := model.Marks{}
	totalCredits := p.cat.TotalCredits()
	for _, course := range p.cat.Courses() {
		for _, comp := range course.Components {
			needed := targetGPA * totalCredits * comp.MaxMarks * comp.Weight / (MaxGPA * course.Credits * 100)
			required.Set(course.ID, comp.ID, math.Min(needed, comp.MaxMarks))
		}
	}
	return required
}

// Adjust replaces projections with actual marks for completed components and
// spreads the resulting shortfall or surplus over the remaining components in
// proportion to their weightage. Results are clamped at each component's
// ceiling but not floored at zero.
func (p *Planner) Adjust(required, current model.Marks, completed model.Completed) model.Marks {
	adjusted, _ := p.adjust(required, current, completed)
	return adjusted
}

func (p *Planner) adjust(required, current model.Marks, completed model.Completed) (model.Marks, []CappedComponent) {
	adjusted := model.Marks{}
	var capped []CappedComponent
	for _, course := range p.cat.Courses() {
		for _, comp := range course.Components {
			req, _ := required.Get(course.ID, comp.ID)
			adjusted.Set(course.ID, comp.ID, req)
		}

		completedWeight := 0.0
		shortfall := 0.0
		for _, comp := range course.Components {
			if !completed.Has(course.ID, comp.ID) {
				continue
			}
			actual, _ := current.Get(course.ID, comp.ID)
			req, _ := required.Get(course.ID, comp.ID)
			adjusted.Set(course.ID, comp.ID, actual)
			completedWeight += comp.Weight
			shortfall += req - actual
		}

		remainingWeight := course.TotalWeight() - completedWeight
		if remainingWeight <= 0 {
			continue
		}
		for _, comp := range course.Components {
			if completed.Has(course.ID, comp.ID) {
				continue
			}
			req, _ := required.Get(course.ID, comp.ID)
			needed := req + shortfall*(comp.Weight/remainingWeight)
			if needed > comp.MaxMarks {
				capped = append(capped, CappedComponent{
					Course:    course.ID,
					Component: comp.ID,
					Needed:    needed,
					MaxMarks:  comp.MaxMarks,
				})
				needed = comp.MaxMarks
			}
			adjusted.Set(course.ID, comp.ID, needed)
		}
	}
	return adjusted, capped
}

// IsFeasible reports false when any current mark exceeds the adjusted value
// for the same component. Completed components are copied verbatim by Adjust,
// so only a pending component holding more than its requirement trips it.
func IsFeasible(current, adjusted model.Marks) bool {
	for course, comps := range current {
		for comp, mark := range comps {
			target, ok := adjusted.Get(course, comp)
			if ok && mark > target {
				return false
			}
		}
	}
	return true
}

// Standing reports whether each current mark meets the given requirement.
func Standing(current, required model.Marks) map[model.CourseID]map[model.ComponentID]bool {
	out := map[model.CourseID]map[model.ComponentID]bool{}
	for course, comps := range required {
		out[course] = map[model.ComponentID]bool{}
		for comp, req := range comps {
			mark, _ := current.Get(course, comp)
			out[course][comp] = mark >= req
		}
	}
	return out
}

// Evaluate runs the full pipeline for one input.
func (p *Planner) Evaluate(in model.Input) Evaluation {
	required := p.Required(in.TargetGPA)
	adjusted, capped := p.adjust(required, in.Current, in.Completed)
	return Evaluation{
		TargetGPA: in.TargetGPA,
		Required:  required,
		Adjusted:  adjusted,
		Feasible:  IsFeasible(in.Current, adjusted),
		Capped:    capped,
		Standing:  Standing(in.Current, required),
	}
}
