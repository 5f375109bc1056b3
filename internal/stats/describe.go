package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/model"
)

// Summary holds descriptive statistics for a set of marks.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes count, mean, sample standard deviation, extremes and
// quartiles. Std is NaN with fewer than two values; everything else is NaN
// for an empty input.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	n := float64(len(sorted))
	mean := sum / n

	std := math.NaN()
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / (n - 1))
	}

	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between the closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// RenderDescribe prints one summary column per course over the current marks.
func RenderDescribe(w io.Writer, cat *catalog.Catalog, marks model.Marks) error {
	courses := cat.Courses()
	if len(courses) == 0 {
		_, err := fmt.Fprintln(w, "No courses found.")
		return err
	}
	summaries := make([]Summary, len(courses))
	headers := []string{""}
	for i, course := range courses {
		values := make([]float64, 0, len(course.Components))
		for _, comp := range course.Components {
			v, _ := marks.Get(course.ID, comp.ID)
			values = append(values, v)
		}
		summaries[i] = Describe(values)
		headers = append(headers, string(course.ID))
	}

	type stat struct {
		label string
		value func(Summary) float64
	}
	statRows := []stat{
		{"count", func(s Summary) float64 { return float64(s.Count) }},
		{"mean", func(s Summary) float64 { return s.Mean }},
		{"std", func(s Summary) float64 { return s.Std }},
		{"min", func(s Summary) float64 { return s.Min }},
		{"25%", func(s Summary) float64 { return s.Q25 }},
		{"50%", func(s Summary) float64 { return s.Median }},
		{"75%", func(s Summary) float64 { return s.Q75 }},
		{"max", func(s Summary) float64 { return s.Max }},
	}
	rows := make([][]string, 0, len(statRows))
	for _, st := range statRows {
		row := []string{st.label}
		for _, s := range summaries {
			row = append(row, formatStat(st.value(s)))
		}
		rows = append(rows, row)
	}
	rightAlign := map[int]bool{}
	for i := 1; i < len(headers); i++ {
		rightAlign[i] = true
	}

	if _, err := fmt.Fprintln(w, "Overall Analysis"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
