package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/marksplan/internal/catalog"
)

const creditBarWidth = 30

// RenderReference prints the highest, least and average class scores.
func RenderReference(w io.Writer, cat *catalog.Catalog) error {
	headers := []string{"Course", "Component", "Highest", "Least", "Average"}
	var rows [][]string
	for _, course := range cat.Courses() {
		for _, comp := range course.Components {
			ref, ok := cat.Reference(course.ID, comp.ID)
			if !ok {
				continue
			}
			rows = append(rows, []string{
				string(course.ID),
				string(comp.ID),
				formatMark(ref.Highest),
				formatMark(ref.Least),
				formatMark(ref.Avg),
			})
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No reference scores found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Subject-wise Scores"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSchedule prints the upcoming exam schedule.
func RenderSchedule(w io.Writer, cat *catalog.Catalog) error {
	schedule := cat.Schedule()
	if len(schedule) == 0 {
		_, err := fmt.Fprintln(w, "No upcoming exams.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Upcoming Schedule"); err != nil {
		return err
	}
	for _, entry := range schedule {
		if _, err := fmt.Fprintf(w, "%s (%s) - %s\n", entry.Date.Format("2006-01-02"), entry.Date.Weekday(), entry.Course); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CreditShare is a course's fraction of total credits.
type CreditShare struct {
	Course  string
	Credits float64
	Share   float64
}

// CreditShares returns each course's share of total credits in catalog order.
func CreditShares(cat *catalog.Catalog) []CreditShare {
	total := cat.TotalCredits()
	courses := cat.Courses()
	out := make([]CreditShare, 0, len(courses))
	for _, course := range courses {
		share := 0.0
		if total > 0 {
			share = course.Credits / total
		}
		out = append(out, CreditShare{Course: string(course.ID), Credits: course.Credits, Share: share})
	}
	return out
}

// RenderCredits prints a bar per course sized by its share of total credits.
func RenderCredits(w io.Writer, cat *catalog.Catalog) error {
	shares := CreditShares(cat)
	if _, err := fmt.Fprintln(w, "Course Credits"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		filled := int(math.Round(s.Share * creditBarWidth))
		rows = append(rows, []string{
			s.Course,
			formatMark(s.Credits),
			fmt.Sprintf("%.1f%%", s.Share*100),
			strings.Repeat("#", filled),
		})
	}
	for _, line := range formatTable([]string{"Course", "Credits", "Share", ""}, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCatalog prints every course with its credits and component weightages.
func RenderCatalog(w io.Writer, cat *catalog.Catalog) error {
	headers := []string{"Course", "Credits", "Component", "Weightage", "Max"}
	var rows [][]string
	for _, course := range cat.Courses() {
		for i, comp := range course.Components {
			id, credits := "", ""
			if i == 0 {
				id, credits = string(course.ID), formatMark(course.Credits)
			}
			rows = append(rows, []string{id, credits, string(comp.ID), formatMark(comp.Weight) + "%", formatMark(comp.MaxMarks)})
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No courses found.")
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nTotal credits: %s\n", formatMark(cat.TotalCredits()))
	return err
}
