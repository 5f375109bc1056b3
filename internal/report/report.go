// Package report writes the gradesheet export.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/model"
)

// DefaultFileName is used when no output path is configured.
const DefaultFileName = "gradesheet.txt"

// Write renders the gradesheet: the target GPA followed by every course's
// current marks next to the adjusted requirement.
func Write(w io.Writer, cat *catalog.Catalog, targetGPA float64, current, adjusted model.Marks) error {
	if _, err := fmt.Fprintln(w, "Gradesheet"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Target GPA: %.2f\n", targetGPA); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Current Marks and Required Marks"); err != nil {
		return err
	}
	for _, course := range cat.Courses() {
		if _, err := fmt.Fprintf(w, "\n%s\n", course.ID); err != nil {
			return err
		}
		for _, comp := range course.Components {
			mark, _ := current.Get(course.ID, comp.ID)
			required, _ := adjusted.Get(course.ID, comp.ID)
			if _, err := fmt.Fprintf(w, "%s marks: %s | Required: %.2f\n", comp.ID, strconv.FormatFloat(mark, 'f', -1, 64), required); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile writes the gradesheet to path through a temp file and rename so a
// failed export never leaves a truncated file behind.
func WriteFile(path string, cat *catalog.Catalog, targetGPA float64, current, adjusted model.Marks) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create gradesheet dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "gradesheet-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp gradesheet: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := Write(writer, cat, targetGPA, current, adjusted); err != nil {
		return fmt.Errorf("failed to write gradesheet: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush gradesheet: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close gradesheet: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace gradesheet: %w", err)
	}
	return nil
}
