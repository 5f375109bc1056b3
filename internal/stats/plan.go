package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// RenderPlan prints the adjusted marks table and the feasibility verdict.
func RenderPlan(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Target GPA: %.2f\n\n", r.TargetGPA); err != nil {
		return err
	}
	if len(r.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No courses found.")
		return err
	}

	headers := []string{"Course", "Component", "Marks", "Max", "Required", "Adjusted", "Status"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			string(row.Course),
			string(row.Component),
			formatMark(row.Current),
			formatMark(row.MaxMarks),
			fmt.Sprintf("%.2f", row.Required),
			fmt.Sprintf("%.2f", row.Adjusted),
			rowStatus(row),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	verdict := "Target GPA is reachable with the adjusted marks above."
	if !r.Feasible {
		verdict = "It is not possible to achieve the target GPA with the current marks."
	}
	if _, err := fmt.Fprintln(w, verdict); err != nil {
		return err
	}
	if len(r.Capped) > 0 {
		parts := make([]string, 0, len(r.Capped))
		for _, c := range r.Capped {
			parts = append(parts, fmt.Sprintf("%s %s (%.2f > %s)", c.Course, c.Component, c.Needed, formatMark(c.MaxMarks)))
		}
		if _, err := fmt.Fprintf(w, "Warning: capped at maximum: %s\n", strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func rowStatus(row Row) string {
	switch {
	case row.Completed:
		return "done"
	case row.Capped:
		return "capped"
	case row.Adjusted < 0:
		return "covered"
	default:
		return ""
	}
}

type planDoc struct {
	TargetGPA  float64        `json:"target_gpa" yaml:"target_gpa"`
	Feasible   bool           `json:"feasible" yaml:"feasible"`
	Components []componentDoc `json:"components" yaml:"components"`
}

type componentDoc struct {
	Course    string  `json:"course" yaml:"course"`
	Component string  `json:"component" yaml:"component"`
	Marks     float64 `json:"marks" yaml:"marks"`
	MaxMarks  float64 `json:"max_marks" yaml:"max_marks"`
	Required  float64 `json:"required" yaml:"required"`
	Adjusted  float64 `json:"adjusted" yaml:"adjusted"`
	Completed bool    `json:"completed" yaml:"completed"`
	Capped    bool    `json:"capped" yaml:"capped"`
	OnTrack   bool    `json:"on_track" yaml:"on_track"`
}

func newPlanDoc(r Report) planDoc {
	out := planDoc{
		TargetGPA:  r.TargetGPA,
		Feasible:   r.Feasible,
		Components: make([]componentDoc, 0, len(r.Rows)),
	}
	for _, row := range r.Rows {
		out.Components = append(out.Components, componentDoc{
			Course:    string(row.Course),
			Component: string(row.Component),
			Marks:     row.Current,
			MaxMarks:  row.MaxMarks,
			Required:  row.Required,
			Adjusted:  row.Adjusted,
			Completed: row.Completed,
			Capped:    row.Capped,
			OnTrack:   row.OnTrack,
		})
	}
	return out
}

// RenderPlanJSON prints the plan as indented JSON.
func RenderPlanJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newPlanDoc(r))
}

// RenderPlanYAML prints the plan as YAML.
func RenderPlanYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newPlanDoc(r)); err != nil {
		return err
	}
	return enc.Close()
}

// RenderStanding prints which current marks already meet the unadjusted requirement.
func RenderStanding(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, "Standing"); err != nil {
		return err
	}
	headers := []string{"Course", "Component", "Marks", "Required", "On Track"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		mark := "no"
		if row.OnTrack {
			mark = "yes"
		}
		rows = append(rows, []string{
			string(row.Course),
			string(row.Component),
			formatMark(row.Current),
			fmt.Sprintf("%.2f", row.Required),
			mark,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// formatMark drops the decimals from whole numbers.
func formatMark(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
