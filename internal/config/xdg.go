// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"

	"github.com/verte-zerg/marksplan/internal/report"
)

const appName = "marksplan"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultMarksPath returns the default marks file path.
func DefaultMarksPath() string {
	return filepath.Join(XDGConfigHome(), appName, "marks.toml")
}

// DefaultReportPath returns where the gradesheet goes when no output is configured.
func DefaultReportPath() string {
	return filepath.Join(XDGDataHome(), appName, report.DefaultFileName)
}
