package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/marksheet"
	"github.com/verte-zerg/marksplan/internal/model"
)

// MarksForm collects a marks file through a step-by-step huh form, one page
// per course.
type MarksForm struct {
	cat       *catalog.Catalog
	gpa       string
	marks     map[model.CourseID]map[model.ComponentID]*string
	completed map[model.CourseID]*[]string
	form      *huh.Form
}

// NewMarksForm builds a form prefilled from sheet.
func NewMarksForm(cat *catalog.Catalog, sheet marksheet.Sheet, targetGPA float64) *MarksForm {
	f := &MarksForm{
		cat:       cat,
		gpa:       formatNumber(targetGPA),
		marks:     map[model.CourseID]map[model.ComponentID]*string{},
		completed: map[model.CourseID]*[]string{},
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Target GPA").
				Description("Between 0 and 10").
				Value(&f.gpa).
				Validate(validateGPAText),
		).Title("marksplan"),
	}
	for _, course := range cat.Courses() {
		f.marks[course.ID] = map[model.ComponentID]*string{}
		var done []string
		ids := make([]string, 0, len(course.Components))
		fields := make([]huh.Field, 0, len(course.Components)+1)
		for _, comp := range course.Components {
			mark, _ := sheet.Current.Get(course.ID, comp.ID)
			value := formatNumber(mark)
			f.marks[course.ID][comp.ID] = &value
			ids = append(ids, string(comp.ID))
			if sheet.Completed.Has(course.ID, comp.ID) {
				done = append(done, string(comp.ID))
			}
			fields = append(fields, huh.NewInput().
				Title(string(comp.ID)).
				Description(fmt.Sprintf("Out of %s, weightage %s%%", formatNumber(comp.MaxMarks), formatNumber(comp.Weight))).
				Value(&value).
				Validate(validateMarkText(comp)))
		}
		f.completed[course.ID] = &done
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Completed components").
			Options(huh.NewOptions(ids...)...).
			Value(&done))
		groups = append(groups, huh.NewGroup(fields...).
			Title(fmt.Sprintf("%s (%s credits)", course.ID, formatNumber(course.Credits))))
	}
	f.form = huh.NewForm(groups...).WithTheme(formTheme())
	return f
}

// Run shows the form until the user submits or aborts.
func (f *MarksForm) Run() error {
	return f.form.Run()
}

// Result converts the form values into a sheet and target GPA.
func (f *MarksForm) Result() (marksheet.Sheet, float64, error) {
	gpa, err := parseNumber(f.gpa)
	if err != nil {
		return marksheet.Sheet{}, 0, fmt.Errorf("target GPA: %w", err)
	}
	if err := marksheet.ValidateGPA(gpa); err != nil {
		return marksheet.Sheet{}, 0, err
	}
	sheet := marksheet.Sheet{TargetGPA: &gpa, Current: model.Marks{}, Completed: model.Completed{}}
	for _, course := range f.cat.Courses() {
		for _, comp := range course.Components {
			mark, err := parseNumber(*f.marks[course.ID][comp.ID])
			if err == nil {
				err = marksheet.ValidateMark(comp, mark)
			}
			if err != nil {
				return marksheet.Sheet{}, 0, fmt.Errorf("%s %s: %w", course.ID, comp.ID, err)
			}
			sheet.Current.Set(course.ID, comp.ID, mark)
		}
		for _, id := range *f.completed[course.ID] {
			sheet.Completed.Toggle(course.ID, model.ComponentID(id))
		}
	}
	return sheet, gpa, nil
}

func validateGPAText(s string) error {
	gpa, err := parseNumber(s)
	if err != nil {
		return err
	}
	return marksheet.ValidateGPA(gpa)
}

func validateMarkText(comp catalog.Component) func(string) error {
	return func(s string) error {
		mark, err := parseNumber(s)
		if err != nil {
			return err
		}
		return marksheet.ValidateMark(comp, mark)
	}
}

func formTheme() *huh.Theme {
	t := huh.ThemeBase()
	accent := lipgloss.Color("#C89A3A")
	muted := lipgloss.Color("#8C8C8C")
	t.Group.Title = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1)
	t.Focused.Base = t.Focused.Base.BorderForeground(accent)
	t.Focused.Title = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(muted)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(accent)
	return t
}
