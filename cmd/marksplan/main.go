// Package main provides the CLI entrypoint for marksplan.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/config"
	"github.com/verte-zerg/marksplan/internal/logger"
	"github.com/verte-zerg/marksplan/internal/marksheet"
	"github.com/verte-zerg/marksplan/internal/planner"
	"github.com/verte-zerg/marksplan/internal/quotes"
	"github.com/verte-zerg/marksplan/internal/report"
	"github.com/verte-zerg/marksplan/internal/stats"
	"github.com/verte-zerg/marksplan/internal/tui"
)

const (
	defaultTargetGPA  = 8.0
	defaultPlotHeight = 10
)

var (
	catalogPath string
	marksPath   string
	targetGPA   float64
	logLevel    string

	planJSON bool
	planYAML bool

	reportOut string

	analyzePlotHeight int

	marksForm bool
)

// exitCodeError ends the process with code without printing anything else.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		logErrf("Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "marksplan",
		Short:         "Plan the marks needed to reach a target GPA",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logErrf("failed to load .env: %v\n", err)
			}
			logger.Init(logLevel)
		},
		RunE: runInteractiveCmd,
	}

	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "course catalog file (default: built-in catalog)")
	rootCmd.PersistentFlags().StringVar(&marksPath, "marks", "", "marks file (default: "+config.DefaultMarksPath()+")")
	rootCmd.PersistentFlags().Float64Var(&targetGPA, "gpa", defaultTargetGPA, "target GPA (0-10)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env "+logger.EnvLevel+")")

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newReferenceCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMarksCmd())

	return rootCmd
}

// session is everything a command needs after config, flags and files are merged.
type session struct {
	cfg   config.FileConfig
	cat   *catalog.Catalog
	sheet marksheet.Sheet
	gpa   float64
}

func loadSession(cmd *cobra.Command) (session, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return session{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "catalog", &catalogPath, fileCfg.Plan.Catalog)
	applyStringConfig(cmd, "marks", &marksPath, fileCfg.Plan.Marks)

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return session{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Debug("catalog loaded", "path", catalogPath, "courses", len(cat.Courses()), "credits", cat.TotalCredits())

	path := resolveMarksPath()
	sheet, err := marksheet.Load(path, cat)
	if err != nil {
		return session{}, fmt.Errorf("failed to load marks: %w", err)
	}
	slog.Debug("marks loaded", "path", path)

	gpa := resolveTargetGPA(cmd, fileCfg.Plan.TargetGPA, sheet.TargetGPA)
	if err := marksheet.ValidateGPA(gpa); err != nil {
		return session{}, fmt.Errorf("invalid --gpa: %w", err)
	}
	return session{cfg: fileCfg, cat: cat, sheet: sheet, gpa: gpa}, nil
}

// resolveTargetGPA picks the --gpa flag, then the marks file, then the
// config file, then the default.
func resolveTargetGPA(cmd *cobra.Command, fromConfig, fromSheet *float64) float64 {
	if cmd.Flags().Changed("gpa") {
		return targetGPA
	}
	if fromSheet != nil {
		return *fromSheet
	}
	if fromConfig != nil {
		return *fromConfig
	}
	return targetGPA
}

func (s session) evaluate() (planner.Evaluation, stats.Report) {
	in := s.sheet.Input(s.gpa)
	eval := planner.New(s.cat).Evaluate(in)
	slog.Debug("plan evaluated", "target_gpa", s.gpa, "feasible", eval.Feasible, "capped", len(eval.Capped))
	return eval, stats.BuildReport(s.cat, in, eval)
}

func (s session) quote() string {
	var path string
	if s.cfg.Quotes.File != nil {
		path = *s.cfg.Quotes.File
	}
	list, err := quotes.Load(path)
	if err != nil {
		logErrf("failed to load quotes: %v\n", err)
		list = nil
	}
	return quotes.New(list).Pick()
}

func (s session) reportPath() string {
	if s.cfg.Report.Out != nil && *s.cfg.Report.Out != "" {
		return *s.cfg.Report.Out
	}
	return config.DefaultReportPath()
}

func runInteractiveCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	plotHeight := defaultPlotHeight
	if s.cfg.Analysis.PlotHeight != nil {
		plotHeight = *s.cfg.Analysis.PlotHeight
	}
	model := tui.NewModel(tui.Options{
		Catalog:    s.cat,
		Sheet:      s.sheet,
		TargetGPA:  s.gpa,
		Quote:      s.quote(),
		ExportPath: s.reportPath(),
		PlotHeight: plotHeight,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the marks needed on every component",
		Long: `Print the required and adjusted marks for every component.

Exit codes:
  0  target GPA is reachable
  1  target GPA is not reachable with the current marks, or an error occurred`,
		Args: cobra.NoArgs,
		RunE: runPlanCmd,
	}
	cmd.Flags().BoolVar(&planJSON, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&planYAML, "yaml", false, "print the plan as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func runPlanCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	eval, rep := s.evaluate()
	out := cmd.OutOrStdout()
	switch {
	case planJSON:
		err = stats.RenderPlanJSON(out, rep)
	case planYAML:
		err = stats.RenderPlanYAML(out, rep)
	default:
		if _, err = fmt.Fprintf(out, "%s\n\n", s.quote()); err == nil {
			err = stats.RenderPlan(out, rep)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !eval.Feasible {
		return exitCodeError{code: 1}
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the gradesheet",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportOut, "out", "", "output file, or - for stdout (default: "+config.DefaultReportPath()+")")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "out", &reportOut, s.cfg.Report.Out)
	if reportOut == "" {
		reportOut = config.DefaultReportPath()
	}
	eval, _ := s.evaluate()
	in := s.sheet.Input(s.gpa)
	if reportOut == "-" {
		if err := report.Write(cmd.OutOrStdout(), s.cat, s.gpa, in.Current, eval.Adjusted); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := report.WriteFile(reportOut, s.cat, s.gpa, in.Current, eval.Adjusted); err != nil {
		return fmt.Errorf("failed to write %s: %w", reportOut, err)
	}
	logErrf("Wrote %s\n", reportOut)
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show statistics, credit shares and a marks plot",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().IntVar(&analyzePlotHeight, "plot-height", defaultPlotHeight, "plot height in rows")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "plot-height", &analyzePlotHeight, s.cfg.Analysis.PlotHeight)
	if analyzePlotHeight <= 0 {
		return fmt.Errorf("--plot-height must be > 0")
	}
	_, rep := s.evaluate()
	out := cmd.OutOrStdout()
	current := s.sheet.Current
	err = errors.Join(
		stats.RenderDescribe(out, s.cat, current),
		stats.RenderStanding(out, rep),
		stats.RenderCredits(out, s.cat),
		stats.RenderMarksPlot(out, s.cat, current, 0, analyzePlotHeight, false),
	)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newReferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Show class-wide reference scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderCatalogView(cmd, stats.RenderReference)
		},
	}
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the upcoming exam schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderCatalogView(cmd, stats.RenderSchedule)
		},
	}
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show courses, credits and component weightages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderCatalogView(cmd, stats.RenderCatalog)
		},
	}
}

func renderCatalogView(cmd *cobra.Command, render func(io.Writer, *catalog.Catalog) error) error {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), cat); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadCatalog loads only the catalog, so catalog views work without a marks file.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "catalog", &catalogPath, fileCfg.Plan.Catalog)
	applyStringConfig(cmd, "marks", &marksPath, fileCfg.Plan.Marks)
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return editFile(config.DefaultConfigPath(), defaultConfigTemplate())
		},
	}
}

func newMarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marks",
		Short: "Create/open marks file",
		Long: `Create the marks file from a template and open it in $EDITOR.

With --form, fill in the marks through an interactive form instead.`,
		Args: cobra.NoArgs,
		RunE: runMarksCmd,
	}
	cmd.Flags().BoolVar(&marksForm, "form", false, "edit marks in an interactive form")
	return cmd
}

func runMarksCmd(cmd *cobra.Command, _ []string) error {
	if !marksForm {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		return editFile(resolveMarksPath(), marksheet.Template(cat))
	}

	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	form := tui.NewMarksForm(s.cat, s.sheet, s.gpa)
	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to run form: %w", err)
	}
	sheet, _, err := form.Result()
	if err != nil {
		return err
	}
	path := resolveMarksPath()
	if err := marksheet.WriteFile(path, sheet, s.cat); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logErrf("Wrote %s\n", path)
	return nil
}

// resolveMarksPath returns the marks path after flags and config were applied.
func resolveMarksPath() string {
	if marksPath == "" {
		return config.DefaultMarksPath()
	}
	return marksPath
}

// editFile writes template to path when the file is missing, then opens $EDITOR.
func editFile(path, template string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# marksplan configuration
# Uncomment a value to enable it. CLI flags override config values.

[plan]
# target-gpa = %.1f        # Target GPA (0-10); a marks file target-gpa wins over this
# catalog = "catalog.toml" # Course catalog (default: built-in)
# marks = %q

[report]
# out = %q

[analysis]
# plot-height = %d

[quotes]
# file = "quotes.txt"      # One quote per line
`,
		defaultTargetGPA,
		config.DefaultMarksPath(),
		config.DefaultReportPath(),
		defaultPlotHeight,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
