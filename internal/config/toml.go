// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Plan     PlanConfig     `toml:"plan"`
	Report   ReportConfig   `toml:"report"`
	Analysis AnalysisConfig `toml:"analysis"`
	Quotes   QuotesConfig   `toml:"quotes"`
}

// PlanConfig maps planning settings.
type PlanConfig struct {
	TargetGPA *float64 `toml:"target-gpa" validate:"omitempty,gte=0,lte=10"`
	Catalog   *string  `toml:"catalog" validate:"omitempty,min=1"`
	Marks     *string  `toml:"marks" validate:"omitempty,min=1"`
}

// ReportConfig maps gradesheet export settings.
type ReportConfig struct {
	Out *string `toml:"out" validate:"omitempty,min=1"`
}

// AnalysisConfig maps analysis output settings.
type AnalysisConfig struct {
	PlotHeight *int `toml:"plot-height" validate:"omitempty,gt=0,lte=100"`
}

// QuotesConfig maps the quotes source.
type QuotesConfig struct {
	File *string `toml:"file" validate:"omitempty,min=1"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := Validate(cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their TOML names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks value ranges of a decoded config.
func Validate(cfg FileConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Errorf("config %s: %s", configKey(fe.Namespace()), describeRule(fe)))
	}
	return errors.Join(problems...)
}

// configKey turns "FileConfig.plan.target-gpa" into "plan.target-gpa".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "min":
		return "must not be empty"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
