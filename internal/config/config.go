// Package config provides settings loading, validation and CLI precedence resolution.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/tweet-scraper/internal/ingestion"
	"github.com/jonathan/tweet-scraper/internal/schemas"
	"github.com/jonathan/tweet-scraper/internal/timeutil"
)

// Built-in defaults used when neither a flag nor the settings file provides a value.
const (
	DefaultPath       = "config/settings.json"
	PathEnv           = "TWEET_SCRAPER_CONFIG"
	DefaultInputFile  = "data/sample_input.txt"
	DefaultOutputDir  = "data"
	DefaultOutputBase = "sample_output"
	DefaultFormat     = "json"
	DefaultLogLevel   = "info"
)

// Settings represents the optional JSON settings file.
// All fields are optional; empty values fall through to built-in defaults.
// export_format is not checked here; an unknown tag is rejected at export time.
type Settings struct {
	SinceDate      string `json:"since_date,omitempty"`
	ExportFormat   string `json:"export_format,omitempty"`
	OutputDir      string `json:"output_dir,omitempty"`
	OutputFilename string `json:"output_filename,omitempty"`
	LogLevel       string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error critical fatal"`
}

// Path returns the settings path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// LoadSettings loads settings from a JSON file.
// Only an unreadable file or a document that is not a JSON object fails as a whole.
// Values rejected by the settings schema or by Validate are dropped one by one and
// reported as issues; the remaining keys are kept.
func LoadSettings(path string) (*Settings, []schemas.FieldError, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, nil, fmt.Errorf("failed to parse config JSON in %s", path)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, nil, fmt.Errorf("config file %s does not contain a JSON object", path)
	}

	// Step 1: drop values of the wrong JSON type
	var issues []schemas.FieldError
	if err := schemas.Validate(schemas.Settings, data); err != nil {
		var validationErr *schemas.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, nil, err
		}
		for _, fe := range validationErr.Errors {
			delete(fields, fe.Field)
			issues = append(issues, fe)
		}
	}

	filtered, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-encode config %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(filtered, &s); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	s.ExportFormat = strings.ToLower(strings.TrimSpace(s.ExportFormat))
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))

	// Step 2: drop values outside their allowed set
	if err := s.Validate(); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, nil, err
		}
		for _, fe := range fieldErrs {
			s.clear(fe.Field())
			issues = append(issues, schemas.FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("%q failed the '%s' check", fe.Value(), fe.Tag()),
			})
		}
	}
	return &s, issues, nil
}

// Validate checks field values after case normalization. Field names in the returned
// validator.ValidationErrors are the JSON keys.
func (s *Settings) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

func (s *Settings) clear(field string) {
	switch field {
	case "since_date":
		s.SinceDate = ""
	case "export_format":
		s.ExportFormat = ""
	case "output_dir":
		s.OutputDir = ""
	case "output_filename":
		s.OutputFilename = ""
	case "log_level":
		s.LogLevel = ""
	}
}

// ResolveSinceDate returns the filter instant: flag, then settings, then the previous UTC day.
// An unparseable value is logged and replaced by the default rather than tried further down.
func (s *Settings) ResolveSinceDate(cli string, now time.Time, logger *log.Logger) time.Time {
	if cli != "" {
		if t, ok := timeutil.ParseSinceDate(cli); ok {
			return t
		}
		logger.Error("invalid --since-date value, falling back to default", "value", cli)
		return timeutil.DefaultSince(now)
	}
	if s.SinceDate != "" {
		if t, ok := timeutil.ParseSinceDate(s.SinceDate); ok {
			return t
		}
		logger.Error("invalid since_date in settings, falling back to default", "value", s.SinceDate)
	}
	return timeutil.DefaultSince(now)
}

// ResolveFormat returns the lower-cased export format tag.
func (s *Settings) ResolveFormat(cli string) string {
	if cli != "" {
		return strings.ToLower(cli)
	}
	if s.ExportFormat != "" {
		return s.ExportFormat
	}
	return DefaultFormat
}

// ResolveLogLevel returns the log level name.
func (s *Settings) ResolveLogLevel(cli string) string {
	if cli != "" {
		return cli
	}
	if s.LogLevel != "" {
		return s.LogLevel
	}
	return DefaultLogLevel
}

// ResolveOutputPath returns an absolute output path. An explicit path wins; otherwise the
// file goes under output_dir (relative to baseDir) with output_filename or sample_output.<ext>.
func (s *Settings) ResolveOutputPath(cli, ext, baseDir string) (string, error) {
	if cli != "" {
		return filepath.Abs(expandHome(cli))
	}

	dir := s.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	name := s.OutputFilename
	if name == "" {
		name = DefaultOutputBase + "." + ext
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}
	return filepath.Abs(filepath.Join(dir, name))
}

// ResolveURLs returns positional URLs when present, otherwise the URLs listed in inputFile,
// otherwise those in the default input file. File problems are logged and yield no URLs.
func ResolveURLs(args []string, inputFile string, logger *log.Logger) []string {
	if len(args) > 0 {
		return args
	}

	if inputFile == "" {
		inputFile = DefaultInputFile
		logger.Info("no URLs provided, reading default input file", "path", inputFile)
	}

	urls, err := ingestion.ReadURLFile(inputFile)
	if err != nil {
		logger.Error("failed to read input file", "err", err)
		return nil
	}
	if len(urls) == 0 {
		logger.Warn("no URLs found in input file", "path", inputFile)
	}
	return urls
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
